// Package extraction turns an identity card image into its four text fields.
//
// A run detects field regions once, crops one image per label, recognizes
// the crops concurrently, and assembles a Result. Only an unreadable image or
// a detector failure fails a run; a field that is missing or unreadable is
// reported as an empty string.
package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/sunshineplan/imgconv"
	"golang.org/x/sync/errgroup"
)

// Detector locates labeled field regions in a card image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Region, error)
}

// Recognizer reads the text in a cropped field image. A missing crop or an
// unreadable one yields "" rather than an error.
type Recognizer interface {
	Recognize(ctx context.Context, cropPath string) (string, error)
}

// Run outcomes recorded by Metrics.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFatal   = "fatal"
	OutcomeError   = "error"
)

// Pipeline runs extraction against long-lived Detector and Recognizer
// instances. It is safe for concurrent use; all per-run state, including the
// crop directory, is scoped to a single call.
type Pipeline struct {
	detector         Detector
	recognizer       Recognizer
	cropper          *Cropper
	cropDir          string
	keepCrops        bool
	detectTimeout    time.Duration
	recognizeTimeout time.Duration
	logger           *slog.Logger
	metrics          *Metrics
}

// New creates a Pipeline. cfg must be finalized.
func New(cfg *Config, detector Detector, recognizer Recognizer, logger *slog.Logger, metrics *Metrics) *Pipeline {
	return &Pipeline{
		detector:         detector,
		recognizer:       recognizer,
		cropper:          &Cropper{Quality: cfg.JPEGQuality},
		cropDir:          cfg.CropDir,
		keepCrops:        cfg.Keep(),
		detectTimeout:    cfg.DetectTimeoutDuration(),
		recognizeTimeout: cfg.RecognizeTimeoutDuration(),
		logger:           logger.With("system", "extraction"),
		metrics:          metrics,
	}
}

// Extract runs the pipeline on the image file at imagePath.
func (p *Pipeline) Extract(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()

	img, err := imgconv.Open(imagePath)
	if err != nil {
		p.metrics.observeRun(OutcomeFatal, time.Since(start))
		return Result{}, fmt.Errorf("%w: decode %s: %w", ErrFatalInput, imagePath, err)
	}

	return p.run(ctx, img, start)
}

// ExtractImage runs the pipeline on encoded image bytes.
func (p *Pipeline) ExtractImage(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()

	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		p.metrics.observeRun(OutcomeFatal, time.Since(start))
		return Result{}, fmt.Errorf("%w: decode: %w", ErrFatalInput, err)
	}

	return p.run(ctx, img, start)
}

// Detect runs only the detector, for diagnostics.
func (p *Pipeline) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	dctx, cancel := context.WithTimeout(ctx, p.detectTimeout)
	defer cancel()
	return p.detector.Detect(dctx, img)
}

func (p *Pipeline) run(ctx context.Context, img image.Image, start time.Time) (Result, error) {
	regions, err := p.Detect(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			p.metrics.observeRun(OutcomeError, time.Since(start))
			return Result{}, ctx.Err()
		}
		switch {
		case errors.Is(err, ErrModelUnavailable):
			p.metrics.observeRun(OutcomeError, time.Since(start))
			return Result{}, fmt.Errorf("detect: %w", err)
		case errors.Is(err, context.DeadlineExceeded):
			p.metrics.observeRun(OutcomeError, time.Since(start))
			return Result{}, fmt.Errorf("%w: detect timed out after %v: %w", ErrModelUnavailable, p.detectTimeout, err)
		}
		p.metrics.observeRun(OutcomeFatal, time.Since(start))
		return Result{}, fmt.Errorf("%w: detect: %w", ErrFatalInput, err)
	}

	runDir, err := p.newRunDir()
	if err != nil {
		p.metrics.observeRun(OutcomeError, time.Since(start))
		return Result{}, err
	}
	if !p.keepCrops {
		defer func() {
			if err := os.RemoveAll(runDir); err != nil {
				p.logger.Warn("remove crop directory failed", "dir", runDir, "error", err)
			}
		}()
	}

	crops, err := p.cropper.Crop(img, regions, runDir)
	if err != nil {
		p.metrics.observeRun(OutcomeError, time.Since(start))
		return Result{}, err
	}

	result := Assemble(p.recognize(ctx, crops))

	outcome := OutcomeSuccess
	missing := result.Missing()
	if len(missing) > 0 {
		outcome = OutcomePartial
	}
	elapsed := time.Since(start)
	p.metrics.observeRun(outcome, elapsed)

	p.logger.InfoContext(ctx, "extraction complete",
		"regions", len(regions),
		"crops", len(crops),
		"missing", missing,
		"duration", elapsed,
	)

	return result, nil
}

func (p *Pipeline) newRunDir() (string, error) {
	if err := os.MkdirAll(p.cropDir, 0o750); err != nil {
		return "", fmt.Errorf("create crop root: %w", err)
	}
	dir, err := os.MkdirTemp(p.cropDir, "run-")
	if err != nil {
		return "", fmt.Errorf("create crop directory: %w", err)
	}
	return dir, nil
}

// recognize reads every crop concurrently. Each task owns one slot of texts
// and never returns an error or lets a panic escape, so a failure empties
// only its own field.
func (p *Pipeline) recognize(ctx context.Context, crops map[Label]string) map[Label]string {
	labels := Labels()
	texts := make([]string, len(labels))

	rctx, cancel := context.WithTimeout(ctx, p.recognizeTimeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(len(labels))

	for i, label := range labels {
		path, ok := crops[label]
		if !ok {
			p.metrics.observeField(label, FieldAbsent)
			continue
		}

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.logger.ErrorContext(ctx, "recognition panicked", "label", label, "panic", r)
					p.metrics.observeField(label, FieldFailed)
				}
			}()

			text, err := p.recognizer.Recognize(rctx, path)
			if err != nil {
				p.logger.WarnContext(ctx, "recognition failed", "label", label, "error", err)
				p.metrics.observeField(label, FieldFailed)
				return nil
			}

			texts[i] = text
			if text == "" {
				p.metrics.observeField(label, FieldAbsent)
			} else {
				p.metrics.observeField(label, FieldRecognized)
			}
			return nil
		})
	}

	g.Wait()

	out := make(map[Label]string, len(labels))
	for i, label := range labels {
		out[label] = texts[i]
	}
	return out
}
