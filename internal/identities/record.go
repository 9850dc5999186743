// Package identities persists extracted identity card fields as records
// unique by identity number.
package identities

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/idscan/internal/extraction"
)

// Field limits for a saved record.
const (
	IdentityNumberLength = 11
	MaxNameLength        = 50
)

// Record is a saved identity card.
type Record struct {
	ID             int64  `json:"id"`
	IdentityNumber string `json:"identity_number"`
	Surname        string `json:"surname"`
	Name           string `json:"name"`
	BirthDate      Date   `json:"birth_date"`
	CreatedAt      Date   `json:"created_at"`
}

// CreateCommand carries validated fields for a new record.
type CreateCommand struct {
	IdentityNumber string
	Surname        string
	Name           string
	BirthDate      Date
}

// NewCreateCommand validates an extraction result. Every failure wraps ErrInvalid.
func NewCreateCommand(r extraction.Result) (CreateCommand, error) {
	cmd := CreateCommand{
		IdentityNumber: strings.TrimSpace(r.IdentityNumber),
		Surname:        strings.TrimSpace(r.Surname),
		Name:           strings.TrimSpace(r.Name),
	}

	if !isIdentityNumber(cmd.IdentityNumber) {
		return CreateCommand{}, fmt.Errorf("%w: identity_number must be %d digits, got %q",
			ErrInvalid, IdentityNumberLength, cmd.IdentityNumber)
	}
	if err := checkName("surname", cmd.Surname); err != nil {
		return CreateCommand{}, err
	}
	if err := checkName("name", cmd.Name); err != nil {
		return CreateCommand{}, err
	}

	birth, err := ParseDate(r.BirthDate)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: birth_date: %w", ErrInvalid, err)
	}
	cmd.BirthDate = birth

	return cmd, nil
}

func isIdentityNumber(s string) bool {
	if len(s) != IdentityNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func checkName(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if n := utf8.RuneCountInString(v); n > MaxNameLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalid, field, MaxNameLength)
	}
	return nil
}
