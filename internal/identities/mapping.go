package identities

import (
	"github.com/JaimeStill/idscan/pkg/query"
	"github.com/JaimeStill/idscan/pkg/repository"
)

var projection = query.
	NewProjectionMap("", "turkish_identity_cards", "c").
	Project("id", "ID").
	Project("identity_number", "IdentityNumber").
	Project("surname", "Surname").
	Project("name", "Name").
	Project("birth_date", "BirthDate").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "ID"}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.IdentityNumber,
		&r.Surname,
		&r.Name,
		&r.BirthDate,
		&r.CreatedAt,
	)
	return r, err
}
