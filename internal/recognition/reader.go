package recognition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/pkg/lifecycle"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Reader implements extraction.Recognizer over an Engine.
type Reader struct {
	engine      Engine
	deleteAfter bool
	logger      *slog.Logger
}

// New creates a Reader around the engine selected by cfg.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Reader, error) {
	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewReader(engine, cfg.DeleteAfter, logger), nil
}

// NewReader creates a Reader around an explicit engine.
func NewReader(engine Engine, deleteAfter bool, logger *slog.Logger) *Reader {
	return &Reader{
		engine:      engine,
		deleteAfter: deleteAfter,
		logger:      logger.With("system", "recognizer"),
	}
}

// Start registers a startup check for engines that can be probed and closes
// the engine on shutdown.
func (r *Reader) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting recognizer")

	if p, ok := r.engine.(pinger); ok {
		lc.OnStartupCheck("recognizer", func(ctx context.Context) error {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("%w: recognizer: %w", extraction.ErrModelUnavailable, err)
			}
			return nil
		})
	}

	if c, ok := r.engine.(io.Closer); ok {
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			if err := c.Close(); err != nil {
				r.logger.Error("recognizer close failed", "error", err)
				return
			}
			r.logger.Info("recognizer closed")
		})
	}

	return nil
}

// Recognize returns the best candidate text for the crop at cropPath. A
// missing crop or an image with no text yields "".
func (r *Reader) Recognize(ctx context.Context, cropPath string) (string, error) {
	data, err := os.ReadFile(cropPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read crop: %w", err)
	}

	candidates, err := r.engine.Read(ctx, data)

	if r.deleteAfter {
		if rmErr := os.Remove(cropPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			r.logger.WarnContext(ctx, "crop delete failed", "path", cropPath, "error", rmErr)
		}
	}

	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[0].Text, nil
}
