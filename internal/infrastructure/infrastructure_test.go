package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/infrastructure"
)

func loadConfig(t *testing.T, extra string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	toml := `
auto_migrate = true

[database]
driver = "sqlite"
path = ":memory:"

[storage]
root = "` + filepath.ToSlash(filepath.Join(dir, "staging")) + `"
` + extra

	path := filepath.Join(dir, "config.toml")
	if err := writeFile(path, toml); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func TestStartMigratesAndBecomesReady(t *testing.T) {
	cfg := loadConfig(t, "")

	var logs bytes.Buffer
	infra, err := infrastructure.NewWithOutput(cfg, &logs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup: %v", err)
	}

	var n int
	row := infra.Database.Connection().QueryRow(`SELECT COUNT(*) FROM turkish_identity_cards`)
	if err := row.Scan(&n); err != nil {
		t.Fatalf("turkish_identity_cards should exist after startup: %v", err)
	}

	if !strings.Contains(logs.String(), "migrations applied") {
		t.Errorf("expected migration log, got:\n%s", logs.String())
	}

	if _, err := infra.Metrics.Gather(); err != nil {
		t.Errorf("Gather: %v", err)
	}
}

func TestJSONLogger(t *testing.T) {
	cfg := loadConfig(t, "\n[log]\nformat = \"json\"\nlevel = \"warn\"\n")

	var logs bytes.Buffer
	logger := infrastructure.NewLogger(&cfg.Log, &logs)
	logger.Info("hidden")
	logger.Warn("shown", "system", "test")

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", logs.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["system"] != "test" {
		t.Errorf("record = %v", rec)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
