package recognition

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/idscan/pkg/inference"
)

type readResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Sidecar reads text through an EasyOCR-compatible HTTP service.
type Sidecar struct {
	client *inference.Client
}

// NewSidecar creates a Sidecar engine rooted at baseURL.
func NewSidecar(baseURL string, timeout time.Duration) *Sidecar {
	return &Sidecar{client: inference.New(baseURL, timeout)}
}

// Read posts the image to /read.
func (s *Sidecar) Read(ctx context.Context, image []byte) ([]Candidate, error) {
	var resp readResponse
	if err := s.client.PostFile(ctx, "/read", "crop.jpg", image, &resp); err != nil {
		return nil, fmt.Errorf("sidecar read: %w", err)
	}
	return resp.Candidates, nil
}

// Ping calls the sidecar health endpoint.
func (s *Sidecar) Ping(ctx context.Context) error {
	return s.client.Health(ctx)
}
