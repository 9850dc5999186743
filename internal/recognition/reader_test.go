package recognition_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/recognition"
	"github.com/JaimeStill/idscan/pkg/lifecycle"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeEngine struct {
	candidates []recognition.Candidate
	err        error
	seen       []byte
}

func (e *fakeEngine) Read(_ context.Context, image []byte) ([]recognition.Candidate, error) {
	e.seen = image
	return e.candidates, e.err
}

func writeCrop(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "name", extraction.CropFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecognize(t *testing.T) {
	tests := []struct {
		name       string
		candidates []recognition.Candidate
		want       string
	}{
		{
			name: "first candidate wins",
			candidates: []recognition.Candidate{
				{Text: "AYŞE", Confidence: 0.7},
				{Text: "AYSE", Confidence: 0.9},
			},
			want: "AYŞE",
		},
		{name: "no candidates", candidates: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{candidates: tt.candidates}
			r := recognition.NewReader(engine, false, discard)

			path := writeCrop(t)
			got, err := r.Recognize(context.Background(), path)
			if err != nil {
				t.Fatalf("Recognize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Recognize() = %q, want %q", got, tt.want)
			}
			if string(engine.seen) != "jpeg bytes" {
				t.Errorf("engine saw %q", engine.seen)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("crop should be kept: %v", err)
			}
		})
	}
}

func TestRecognizeMissingCrop(t *testing.T) {
	engine := &fakeEngine{candidates: []recognition.Candidate{{Text: "X"}}}
	r := recognition.NewReader(engine, false, discard)

	got, err := r.Recognize(context.Background(), filepath.Join(t.TempDir(), "surname", "im.jpg"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got != "" {
		t.Errorf("Recognize() = %q, want empty", got)
	}
	if engine.seen != nil {
		t.Error("engine should not be called for a missing crop")
	}
}

func TestRecognizeDeleteAfter(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"success", nil, false},
		{"engine failure", errors.New("ocr crashed"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{candidates: []recognition.Candidate{{Text: "12345678901"}}, err: tt.err}
			r := recognition.NewReader(engine, true, discard)

			path := writeCrop(t)
			_, err := r.Recognize(context.Background(), path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Recognize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("crop should be deleted after recognition, stat err = %v", err)
			}
		})
	}
}

// blockingEngine replaces the crop with a non-empty directory once read,
// so the delete that follows cannot succeed.
type blockingEngine struct {
	path string
}

func (e *blockingEngine) Read(_ context.Context, _ []byte) ([]recognition.Candidate, error) {
	if err := os.Remove(e.path); err != nil {
		return nil, err
	}
	if err := os.Mkdir(e.path, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(e.path, "keep"), nil, 0644); err != nil {
		return nil, err
	}
	return []recognition.Candidate{{Text: "AHMET", Confidence: 0.9}}, nil
}

func TestRecognizeDeleteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	path := writeCrop(t)
	r := recognition.NewReader(&blockingEngine{path: path}, true, logger)

	got, err := r.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got != "AHMET" {
		t.Errorf("Recognize() = %q, want AHMET", got)
	}
	if !strings.Contains(logs.String(), "crop delete failed") {
		t.Errorf("expected a delete warning, logs: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("delete failure should log at warn, logs: %s", logs.String())
	}
}

func TestVisionRead(t *testing.T) {
	var req *visionpb.BatchAnnotateImagesRequest
	v := recognition.NewVisionWithAnnotator(func(_ context.Context, r *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		req = r
		return &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{
				TextAnnotations: []*visionpb.EntityAnnotation{
					{Description: "YILMAZ", Score: 0.5},
					{Description: "YIL"},
				},
			}},
		}, nil
	}, []string{"tr", "en"})

	got, err := v.Read(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "YILMAZ" {
		t.Errorf("Read() = %+v, want single YILMAZ candidate", got)
	}

	ar := req.GetRequests()[0]
	if ar.GetFeatures()[0].GetType() != visionpb.Feature_TEXT_DETECTION {
		t.Errorf("feature = %v, want TEXT_DETECTION", ar.GetFeatures()[0].GetType())
	}
	if !slices.Equal(ar.GetImageContext().GetLanguageHints(), []string{"tr", "en"}) {
		t.Errorf("language hints = %v", ar.GetImageContext().GetLanguageHints())
	}
}

func TestVisionReadNoText(t *testing.T) {
	v := recognition.NewVisionWithAnnotator(func(context.Context, *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		}, nil
	}, nil)

	got, err := v.Read(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() = %+v, want none", got)
	}
}

func TestSidecarRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/read" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"text":"01.02.1990","confidence":0.88}]}`))
	}))
	defer srv.Close()

	got, err := recognition.NewSidecar(srv.URL, 0).Read(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "01.02.1990" || got[0].Confidence != 0.88 {
		t.Errorf("Read() = %+v", got)
	}
}

func TestStartFailsWhenSidecarUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := &recognition.Config{BaseURL: srv.URL}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	r, err := recognition.New(context.Background(), cfg, discard)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	r.Start(lc)

	if err := lc.WaitForStartup(); !errors.Is(err, extraction.ErrModelUnavailable) {
		t.Errorf("WaitForStartup() error = %v, want ErrModelUnavailable", err)
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg recognition.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.Engine != recognition.EngineHTTP {
			t.Errorf("engine = %s, want http", cfg.Engine)
		}
		if !slices.Equal(cfg.Languages, []string{"tr", "en"}) {
			t.Errorf("languages = %v", cfg.Languages)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_RECOGNIZER_LANGS", "tr, de")
		t.Setenv("TEST_RECOGNIZER_DELETE", "true")

		var cfg recognition.Config
		env := &recognition.Env{Languages: "TEST_RECOGNIZER_LANGS", DeleteAfter: "TEST_RECOGNIZER_DELETE"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if !slices.Equal(cfg.Languages, []string{"tr", "de"}) {
			t.Errorf("languages = %v", cfg.Languages)
		}
		if !cfg.DeleteAfter {
			t.Error("delete_after should be true")
		}
	})

	t.Run("unsupported engine", func(t *testing.T) {
		cfg := recognition.Config{Engine: "tesseract"}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "unsupported engine") {
			t.Errorf("Finalize() error = %v", err)
		}
	})
}
