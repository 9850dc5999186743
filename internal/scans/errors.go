package scans

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/identities"
	"github.com/JaimeStill/idscan/internal/staging"
)

// Domain errors for scan cycle operations.
var (
	ErrNoImage      = errors.New("no image has been uploaded")
	ErrNoResult     = errors.New("no extraction result is staged")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrInvalidScan  = errors.New("invalid scan handle")
)

// MapHTTPStatus maps scan cycle errors, including those surfaced from the
// staging, extraction, and identities packages, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoImage), errors.Is(err, ErrNoResult):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile), errors.Is(err, ErrInvalidScan):
		return http.StatusBadRequest
	case errors.Is(err, staging.ErrInvalidImage), errors.Is(err, staging.ErrSuperseded), errors.Is(err, staging.ErrNotFound):
		return staging.MapHTTPStatus(err)
	case errors.Is(err, extraction.ErrFatalInput), errors.Is(err, extraction.ErrModelUnavailable):
		return extraction.MapHTTPStatus(err)
	case errors.Is(err, identities.ErrDuplicate), errors.Is(err, identities.ErrInvalid), errors.Is(err, identities.ErrNotFound):
		return identities.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
