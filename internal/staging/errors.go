package staging

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates nothing of the requested kind is staged.
	ErrNotFound = errors.New("nothing staged")
	// ErrSuperseded indicates a newer upload replaced the image a handle refers to.
	ErrSuperseded = errors.New("staged image was superseded")
	// ErrInvalidImage indicates the upload filename is not an accepted image type.
	ErrInvalidImage = errors.New("unsupported image type")
)

// MapHTTPStatus maps staging errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidImage):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
