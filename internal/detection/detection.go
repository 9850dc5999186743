// Package detection locates identity card fields by calling a YOLO
// inference sidecar over HTTP.
package detection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"net/http"

	"github.com/sunshineplan/imgconv"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/pkg/inference"
	"github.com/JaimeStill/idscan/pkg/lifecycle"
)

type detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

type detectResponse struct {
	Detections []detection `json:"detections"`
}

// Client implements extraction.Detector. The sidecar loads its weights once;
// Client itself holds no per-request state and is safe for concurrent use.
type Client struct {
	sidecar       *inference.Client
	minConfidence float64
	logger        *slog.Logger
}

// New creates a Client for the sidecar described by cfg.
func New(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		sidecar:       inference.New(cfg.BaseURL, cfg.TimeoutDuration()),
		minConfidence: cfg.MinConfidence,
		logger:        logger.With("system", "detector"),
	}
}

// Start registers a startup check that fails when the sidecar is unreachable.
func (c *Client) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting detector", "base_url", c.sidecar.BaseURL())
	lc.OnStartupCheck("detector", c.Ping)
	return nil
}

// Ping verifies the sidecar is serving. Failure wraps extraction.ErrModelUnavailable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.sidecar.Health(ctx); err != nil {
		return fmt.Errorf("%w: detector: %w", extraction.ErrModelUnavailable, err)
	}
	return nil
}

// Detect sends img to the sidecar as PNG and returns the regions at or above
// the configured confidence. Regions with unknown labels are dropped. Zero
// regions is a valid answer. Only a 4xx answer means the sidecar rejected
// the image; any other sidecar failure wraps extraction.ErrModelUnavailable.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]extraction.Region, error) {
	var buf bytes.Buffer
	if err := imgconv.Write(&buf, img, &imgconv.FormatOption{Format: imgconv.PNG}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	var resp detectResponse
	if err := c.sidecar.PostFile(ctx, "/detect", "card.png", buf.Bytes(), &resp); err != nil {
		var se *inference.StatusError
		if errors.As(err, &se) && se.Status < http.StatusInternalServerError {
			return nil, err
		}
		return nil, fmt.Errorf("%w: detector: %w", extraction.ErrModelUnavailable, err)
	}

	regions := make([]extraction.Region, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		if d.Confidence < c.minConfidence {
			continue
		}

		label, err := extraction.ParseLabel(d.Label)
		if err != nil {
			c.logger.DebugContext(ctx, "ignoring detection", "label", d.Label)
			continue
		}

		box, err := toRect(d.Box)
		if err != nil {
			return nil, fmt.Errorf("detection %s: %w", d.Label, err)
		}

		regions = append(regions, extraction.Region{
			Label:      label,
			Box:        box,
			Confidence: d.Confidence,
		})
	}

	return regions, nil
}

// toRect converts an [x1, y1, x2, y2] pixel box, widening fractional edges outward.
func toRect(box []float64) (image.Rectangle, error) {
	if len(box) != 4 {
		return image.Rectangle{}, fmt.Errorf("box must have 4 coordinates, got %d", len(box))
	}
	return image.Rect(
		int(math.Floor(box[0])),
		int(math.Floor(box[1])),
		int(math.Ceil(box[2])),
		int(math.Ceil(box[3])),
	), nil
}
