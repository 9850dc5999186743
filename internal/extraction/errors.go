package extraction

import (
	"errors"
	"net/http"
)

var (
	// ErrFatalInput indicates the image could not be decoded or the detector
	// rejected it as input. Nothing is staged for a run that fails this way.
	ErrFatalInput = errors.New("image could not be processed")
	// ErrModelUnavailable indicates a detector or recognizer could not be
	// initialized or the detector could not answer during a run.
	ErrModelUnavailable = errors.New("model unavailable")
)

// MapHTTPStatus maps extraction errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrFatalInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrModelUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
