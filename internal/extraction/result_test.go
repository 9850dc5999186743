package extraction_test

import (
	"encoding/json"
	"net/http"
	"slices"
	"testing"

	"github.com/JaimeStill/idscan/internal/extraction"
)

func TestLabelsOrder(t *testing.T) {
	want := []extraction.Label{"birth_date", "id_number", "name", "surname"}
	if got := extraction.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}

func TestParseLabel(t *testing.T) {
	if l, err := extraction.ParseLabel("surname"); err != nil || l != extraction.LabelSurname {
		t.Errorf("ParseLabel(surname) = %v, %v", l, err)
	}
	if _, err := extraction.ParseLabel("photo"); err == nil {
		t.Error("ParseLabel(photo) should fail")
	}
}

func TestNormalizeBirthDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1990.05.12", "1990-05-12"},
		{" 12.05.1990 ", "12-05-1990"},
		{"1990-05-12", "1990-05-12"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := extraction.NormalizeBirthDate(tt.in); got != tt.want {
				t.Errorf("NormalizeBirthDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAssembleMapsIDNumber(t *testing.T) {
	got := extraction.Assemble(map[extraction.Label]string{
		extraction.LabelIDNumber: " 12345678901\n",
		extraction.LabelName:     "AHMET",
	})

	want := extraction.Result{IdentityNumber: "12345678901", Name: "AHMET"}
	if got != want {
		t.Errorf("Assemble() = %+v, want %+v", got, want)
	}
}

func TestResultJSONKeys(t *testing.T) {
	data, err := json.Marshal(extraction.Result{IdentityNumber: "1"})
	if err != nil {
		t.Fatal(err)
	}

	var keys map[string]string
	json.Unmarshal(data, &keys)

	for _, k := range []string{"identity_number", "surname", "name", "birth_date"} {
		if _, ok := keys[k]; !ok {
			t.Errorf("missing key %s in %s", k, data)
		}
	}
	if len(keys) != 4 {
		t.Errorf("result should have exactly four keys: %s", data)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := extraction.MapHTTPStatus(extraction.ErrFatalInput); got != http.StatusUnprocessableEntity {
		t.Errorf("ErrFatalInput -> %d", got)
	}
	if got := extraction.MapHTTPStatus(extraction.ErrModelUnavailable); got != http.StatusServiceUnavailable {
		t.Errorf("ErrModelUnavailable -> %d", got)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_KEEP", "true")
	t.Setenv("TEST_DETECT", "5s")

	cfg := extraction.Config{}
	if err := cfg.Finalize(&extraction.Env{KeepCrops: "TEST_KEEP", DetectTimeout: "TEST_DETECT"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Keep() {
		t.Error("keep_crops should be true from env")
	}
	if cfg.DetectTimeoutDuration().Seconds() != 5 {
		t.Errorf("detect_timeout = %s", cfg.DetectTimeout)
	}
	if cfg.JPEGQuality != 95 {
		t.Errorf("jpeg_quality = %d, want 95", cfg.JPEGQuality)
	}

	bad := extraction.Config{RecognizeTimeout: "never"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("invalid recognize_timeout should fail")
	}
}
