// Package recognition reads the text in a cropped card field through a
// pluggable OCR engine.
package recognition

import (
	"context"
	"fmt"

	"github.com/JaimeStill/idscan/internal/extraction"
)

// Candidate is one text reading with the engine's confidence.
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Engine reads text from an encoded image. Candidates are ranked best-first.
type Engine interface {
	Read(ctx context.Context, image []byte) ([]Candidate, error)
}

// NewEngine constructs the engine selected by cfg. Failure wraps
// extraction.ErrModelUnavailable.
func NewEngine(ctx context.Context, cfg *Config) (Engine, error) {
	switch cfg.Engine {
	case EngineVision:
		e, err := NewVision(ctx, cfg.Languages)
		if err != nil {
			return nil, fmt.Errorf("%w: recognizer: %w", extraction.ErrModelUnavailable, err)
		}
		return e, nil
	case EngineHTTP:
		return NewSidecar(cfg.BaseURL, cfg.TimeoutDuration()), nil
	}
	return nil, fmt.Errorf("%w: recognizer: unsupported engine %q", extraction.ErrModelUnavailable, cfg.Engine)
}
