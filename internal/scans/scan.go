package scans

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/staging"
)

// Scan describes the currently staged card image.
type Scan struct {
	Handle     uuid.UUID `json:"handle"`
	Filename   string    `json:"filename"`
	ImageKey   string    `json:"image_key"`
	UploadedAt time.Time `json:"uploaded_at,omitzero"`
}

// Extraction is the outcome of running the pipeline on a staged image.
type Extraction struct {
	Handle  uuid.UUID          `json:"handle"`
	Result  extraction.Result  `json:"result"`
	Missing []extraction.Label `json:"missing"`
}

// Current reports the staged image and, when present, its staged result.
type Current struct {
	Scan   Scan               `json:"scan"`
	Result *extraction.Result `json:"result,omitempty"`
}

func newScan(ref staging.Ref) Scan {
	return Scan{
		Handle:   ref.Handle,
		Filename: ref.Filename,
		ImageKey: ref.Key,
	}
}

func newExtraction(handle uuid.UUID, r extraction.Result) *Extraction {
	missing := r.Missing()
	if missing == nil {
		missing = []extraction.Label{}
	}
	return &Extraction{Handle: handle, Result: r, Missing: missing}
}
