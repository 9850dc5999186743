package recognition

import (
	"context"
	"errors"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// AnnotateFunc performs a batch image annotation call.
type AnnotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// Vision reads text with Google Cloud Vision TEXT_DETECTION.
type Vision struct {
	annotate  AnnotateFunc
	languages []string
	close     func() error
}

// NewVision creates a Vision engine. Credentials come from GOOGLE_CREDENTIALS
// (inline JSON), then GOOGLE_APPLICATION_CREDENTIALS (file), then application
// default credentials.
func NewVision(ctx context.Context, languages []string) (*Vision, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else if file := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}

	v := NewVisionWithAnnotator(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}, languages)
	v.close = client.Close
	return v, nil
}

// NewVisionWithAnnotator creates a Vision engine around an explicit annotate call.
func NewVisionWithAnnotator(annotate AnnotateFunc, languages []string) *Vision {
	return &Vision{annotate: annotate, languages: languages}
}

// Read returns the full detected text as the single candidate, or no
// candidates when the image holds no text.
func (v *Vision) Read(ctx context.Context, image []byte) ([]Candidate, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: v.languages},
			},
		},
	}

	resp, err := v.annotate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, errors.New("vision returned no responses")
	}

	r := resp.GetResponses()[0]
	if e := r.GetError(); e != nil && e.GetCode() != 0 {
		return nil, fmt.Errorf("vision error: %s", e.GetMessage())
	}

	annotations := r.GetTextAnnotations()
	if len(annotations) == 0 {
		return nil, nil
	}

	return []Candidate{{
		Text:       annotations[0].GetDescription(),
		Confidence: float64(annotations[0].GetScore()),
	}}, nil
}

// Close releases the underlying client.
func (v *Vision) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}
