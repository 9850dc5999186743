package staging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/staging"
	"github.com/JaimeStill/idscan/pkg/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newStore(t *testing.T) (*staging.Store, storage.System, string) {
	t.Helper()

	root := t.TempDir()
	cfg := &storage.Config{Provider: storage.ProviderLocal, Root: root}
	sys, err := storage.New(cfg, discard)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return staging.New(sys, discard), sys, root
}

func stage(t *testing.T, s *staging.Store, body, name string) staging.Ref {
	t.Helper()
	ref, err := s.StageImage(context.Background(), strings.NewReader(body), name)
	if err != nil {
		t.Fatalf("StageImage(%s): %v", name, err)
	}
	return ref
}

func TestStageImageSupersedes(t *testing.T) {
	ctx := context.Background()
	s, sys, _ := newStore(t)

	first := stage(t, s, "first", "a.png")
	if _, err := s.StageResult(ctx, first.Handle, extraction.Result{Name: "ALI"}); err != nil {
		t.Fatalf("StageResult: %v", err)
	}

	second := stage(t, s, "second", "b.jpg")

	images, _ := sys.List(ctx, "images/")
	if len(images) != 1 || images[0] != second.Key {
		t.Errorf("images = %v, want only %s", images, second.Key)
	}

	if _, err := s.Latest(ctx, staging.KindResult); !errors.Is(err, staging.ErrNotFound) {
		t.Errorf("result of superseded image should be gone, err = %v", err)
	}

	if _, err := s.Image(ctx, first.Handle); !errors.Is(err, staging.ErrNotFound) {
		t.Errorf("Image(first) error = %v, want ErrNotFound", err)
	}

	_, err := s.StageResult(ctx, first.Handle, extraction.Result{Name: "STALE"})
	if !errors.Is(err, staging.ErrSuperseded) {
		t.Errorf("StageResult(first) error = %v, want ErrSuperseded", err)
	}

	latest, err := s.Latest(ctx, staging.KindImage)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Handle != second.Handle || latest.Filename != "b.jpg" {
		t.Errorf("Latest = %+v, want %+v", latest, second)
	}

	rc, err := s.OpenImage(ctx, latest)
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Errorf("image = %q, want second", data)
	}
}

func TestStageResultOverwritesWithoutStaleBytes(t *testing.T) {
	ctx := context.Background()
	s, _, root := newStore(t)

	img := stage(t, s, "img", "card.png")

	long := extraction.Result{IdentityNumber: "12345678901", Surname: "KARADENIZLIOGLU", Name: "MUSTAFA KEMAL", BirthDate: "01-01-1990"}
	if _, err := s.StageResult(ctx, img.Handle, long); err != nil {
		t.Fatalf("StageResult(long): %v", err)
	}

	short := extraction.Result{Name: "AL"}
	ref, err := s.StageResult(ctx, img.Handle, short)
	if err != nil {
		t.Fatalf("StageResult(short): %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref.Key)))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}

	var decoded extraction.Result
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("staged result is not valid JSON: %v\n%s", err, raw)
	}
	if decoded != short {
		t.Errorf("staged = %+v, want %+v", decoded, short)
	}

	loaded, err := s.LoadResult(ctx, ref)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if loaded != short {
		t.Errorf("LoadResult = %+v, want %+v", loaded, short)
	}
}

func TestResultLookup(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	img := stage(t, s, "img", "card.png")

	if _, err := s.Result(ctx, img.Handle); !errors.Is(err, staging.ErrNotFound) {
		t.Errorf("Result before staging error = %v, want ErrNotFound", err)
	}

	want := extraction.Result{IdentityNumber: "10000000146"}
	if _, err := s.StageResult(ctx, img.Handle, want); err != nil {
		t.Fatalf("StageResult: %v", err)
	}

	ref, err := s.Result(ctx, img.Handle)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	got, err := s.LoadResult(ctx, ref)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if got != want {
		t.Errorf("LoadResult = %+v, want %+v", got, want)
	}
}

func TestLatestEmpty(t *testing.T) {
	s, _, _ := newStore(t)

	for _, kind := range []staging.Kind{staging.KindImage, staging.KindResult} {
		if _, err := s.Latest(context.Background(), kind); !errors.Is(err, staging.ErrNotFound) {
			t.Errorf("Latest(%s) error = %v, want ErrNotFound", kind, err)
		}
	}
}

func TestLatestFallsBackToLexicographicFirst(t *testing.T) {
	ctx := context.Background()
	s, sys, _ := newStore(t)

	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	for _, key := range []string{
		"images/" + high.String() + "/z.png",
		"images/" + low.String() + "/a.png",
	} {
		if err := sys.Upload(ctx, key, strings.NewReader("x"), "image/png"); err != nil {
			t.Fatalf("Upload(%s): %v", key, err)
		}
	}

	ref, err := s.Latest(ctx, staging.KindImage)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if ref.Handle != low {
		t.Errorf("Latest handle = %s, want %s", ref.Handle, low)
	}

	fresh := stage(t, s, "fresh", "card.png")
	images, _ := sys.List(ctx, "images/")
	if len(images) != 1 || images[0] != fresh.Key {
		t.Errorf("StageImage should clear leftovers, images = %v", images)
	}
}

func TestLatestIgnoresForeignKeys(t *testing.T) {
	ctx := context.Background()
	s, sys, _ := newStore(t)

	if err := sys.Upload(ctx, "images/readme.txt", strings.NewReader("x"), ""); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Latest(ctx, staging.KindImage); !errors.Is(err, staging.ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"card.png", "card.png", false},
		{"", staging.DefaultFilename, false},
		{"../../etc/card.JPG", "card.JPG", false},
		{`C:\Users\me\scan.jpeg`, "scan.jpeg", false},
		{"notes.txt", "", true},
		{"..", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := staging.SanitizeFilename(tt.in)
			if tt.wantErr {
				if !errors.Is(err, staging.ErrInvalidImage) {
					t.Errorf("SanitizeFilename(%q) error = %v, want ErrInvalidImage", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFilename(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
