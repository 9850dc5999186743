package database_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/idscan/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "testdb", User: "testuser"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"driver", cfg.Driver, database.DriverPostgres},
		{"path", cfg.Path, "data/idscan.db"},
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "sqlite")
	t.Setenv("TEST_DB_PATH", "/tmp/cards.db")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_MAX_OPEN", "50")
	t.Setenv("TEST_DB_TIMEOUT", "10s")

	env := &database.Env{
		Driver:       "TEST_DB_DRIVER",
		Path:         "TEST_DB_PATH",
		Port:         "TEST_DB_PORT",
		MaxOpenConns: "TEST_DB_MAX_OPEN",
		ConnTimeout:  "TEST_DB_TIMEOUT",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"driver", cfg.Driver, database.DriverSQLite},
		{"path", cfg.Path, "/tmp/cards.db"},
		{"port", cfg.Port, 5433},
		{"max_open_conns", cfg.MaxOpenConns, 50},
		{"conn_timeout", cfg.ConnTimeout, "10s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{
			name:    "postgres missing name",
			cfg:     database.Config{User: "testuser"},
			wantErr: "name required",
		},
		{
			name:    "postgres missing user",
			cfg:     database.Config{Name: "testdb"},
			wantErr: "user required",
		},
		{
			name: "sqlite needs no credentials",
			cfg:  database.Config{Driver: database.DriverSQLite},
		},
		{
			name:    "unsupported driver",
			cfg:     database.Config{Driver: "mysql"},
			wantErr: "unsupported database driver",
		},
		{
			name:    "invalid conn_max_lifetime",
			cfg:     database.Config{Name: "testdb", User: "testuser", ConnMaxLifetime: "bad"},
			wantErr: "invalid conn_max_lifetime",
		},
		{
			name:    "invalid conn_timeout",
			cfg:     database.Config{Name: "testdb", User: "testuser", ConnTimeout: "bad"},
			wantErr: "invalid conn_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDsnAndDriverName(t *testing.T) {
	pg := database.Config{
		Driver: database.DriverPostgres, Host: "db", Port: 5432,
		Name: "idscan", User: "u", Password: "p", SSLMode: "disable",
	}
	if got := pg.DriverName(); got != "pgx" {
		t.Errorf("DriverName() = %s, want pgx", got)
	}
	if want := "host=db port=5432 dbname=idscan user=u password=p sslmode=disable"; pg.Dsn() != want {
		t.Errorf("Dsn() = %s, want %s", pg.Dsn(), want)
	}
	if want := "postgres://u:p@db:5432/idscan?sslmode=disable"; pg.MigrationURL() != want {
		t.Errorf("MigrationURL() = %s, want %s", pg.MigrationURL(), want)
	}

	lite := database.Config{Driver: database.DriverSQLite, Path: "cards.db"}
	if got := lite.DriverName(); got != "sqlite" {
		t.Errorf("DriverName() = %s, want sqlite", got)
	}
	if !strings.HasPrefix(lite.Dsn(), "file:cards.db?") {
		t.Errorf("Dsn() = %s, want file:cards.db?...", lite.Dsn())
	}
	if want := "sqlite://cards.db"; lite.MigrationURL() != want {
		t.Errorf("MigrationURL() = %s, want %s", lite.MigrationURL(), want)
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Driver: database.DriverPostgres, Host: "localhost", Port: 5432}
	base.Merge(&database.Config{Driver: database.DriverSQLite, Path: "x.db"})

	if base.Driver != database.DriverSQLite || base.Path != "x.db" {
		t.Errorf("overlay not applied: %+v", base)
	}
	if base.Host != "localhost" || base.Port != 5432 {
		t.Errorf("zero overlay fields should not overwrite: %+v", base)
	}
}
