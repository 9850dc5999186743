package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/idscan/internal/extraction"
)

type env struct {
	config string
	image  string
}

func newEnv(t *testing.T, detections string) *env {
	t.Helper()

	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/detect":
			io.WriteString(w, detections)
		case "/read":
			io.WriteString(w, `{"candidates": [{"text": "YILMAZ", "confidence": 0.9}]}`)
		default:
			io.WriteString(w, `{"status": "ok"}`)
		}
	}))
	t.Cleanup(sidecar.Close)

	dir := t.TempDir()
	cfg := `
version = "9.9.9"

[detector]
base_url = "` + sidecar.URL + `"

[recognizer]
engine = "http"
base_url = "` + sidecar.URL + `"

[pipeline]
crop_dir = "` + filepath.ToSlash(filepath.Join(dir, "crops")) + `"
`
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	imgPath := filepath.Join(dir, "card.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 32))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	return &env{config: cfgPath, image: imgPath}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtract(t *testing.T) {
	e := newEnv(t, `{"detections": [{"label": "surname", "confidence": 0.8, "box": [0, 0, 32, 16]}]}`)

	out, err := run(t, "extract", "--config", e.config, e.image)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var result extraction.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}

	want := extraction.Result{Surname: "YILMAZ"}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestExtractUnreadableImage(t *testing.T) {
	e := newEnv(t, `{"detections": []}`)

	bad := filepath.Join(t.TempDir(), "card.png")
	os.WriteFile(bad, []byte("not an image"), 0644)

	_, err := run(t, "extract", "--config", e.config, bad)
	if !errors.Is(err, extraction.ErrFatalInput) {
		t.Errorf("err = %v, want ErrFatalInput", err)
	}
}

func TestDetect(t *testing.T) {
	e := newEnv(t, `{"detections": [
		{"label": "name", "confidence": 0.9, "box": [1, 2, 30, 12]},
		{"label": "photo", "confidence": 0.9, "box": [0, 0, 5, 5]}
	]}`)

	out, err := run(t, "detect", "-c", e.config, e.image)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	var regions []extraction.Region
	if err := json.Unmarshal([]byte(out), &regions); err != nil {
		t.Fatalf("output is not regions: %v\n%s", err, out)
	}
	if len(regions) != 1 || regions[0].Label != extraction.LabelName {
		t.Errorf("regions = %+v, want one name region", regions)
	}
}

func TestDetectorUnavailable(t *testing.T) {
	e := newEnv(t, `{"detections": []}`)

	dir := filepath.Dir(e.config)
	cfg := "[detector]\nbase_url = \"http://127.0.0.1:1\"\ntimeout = \"1s\"\n" +
		"[pipeline]\ncrop_dir = \"" + filepath.ToSlash(filepath.Join(dir, "crops")) + "\"\n"
	os.WriteFile(e.config, []byte(cfg), 0644)

	_, err := run(t, "extract", "--config", e.config, e.image)
	if !errors.Is(err, extraction.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestVersion(t *testing.T) {
	e := newEnv(t, `{"detections": []}`)

	out, err := run(t, "version", "--config", e.config)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "9.9.9" {
		t.Errorf("version = %q", out)
	}
}
