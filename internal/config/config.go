// Package config loads service configuration from config.toml, an optional
// environment overlay, a .env file, and IDSCAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/idscan/internal/detection"
	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/recognition"
	"github.com/JaimeStill/idscan/pkg/database"
	"github.com/JaimeStill/idscan/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvIDScanEnv             = "IDSCAN_ENV"
	EnvIDScanShutdownTimeout = "IDSCAN_SHUTDOWN_TIMEOUT"
	EnvIDScanVersion         = "IDSCAN_VERSION"
	EnvIDScanAutoMigrate     = "IDSCAN_AUTO_MIGRATE"
)

var databaseEnv = &database.Env{
	Driver:          "IDSCAN_DB_DRIVER",
	Path:            "IDSCAN_DB_PATH",
	Host:            "IDSCAN_DB_HOST",
	Port:            "IDSCAN_DB_PORT",
	Name:            "IDSCAN_DB_NAME",
	User:            "IDSCAN_DB_USER",
	Password:        "IDSCAN_DB_PASSWORD",
	SSLMode:         "IDSCAN_DB_SSL_MODE",
	MaxOpenConns:    "IDSCAN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "IDSCAN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "IDSCAN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "IDSCAN_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "IDSCAN_STORAGE_PROVIDER",
	Root:             "IDSCAN_STORAGE_ROOT",
	ContainerName:    "IDSCAN_STORAGE_CONTAINER_NAME",
	ConnectionString: "IDSCAN_STORAGE_CONNECTION_STRING",
	ServiceURL:       "IDSCAN_STORAGE_SERVICE_URL",
	MaxListSize:      "IDSCAN_STORAGE_MAX_LIST_SIZE",
}

var detectorEnv = &detection.Env{
	BaseURL:       "IDSCAN_DETECTOR_BASE_URL",
	Timeout:       "IDSCAN_DETECTOR_TIMEOUT",
	MinConfidence: "IDSCAN_DETECTOR_MIN_CONFIDENCE",
}

var recognizerEnv = &recognition.Env{
	Engine:      "IDSCAN_RECOGNIZER_ENGINE",
	BaseURL:     "IDSCAN_RECOGNIZER_BASE_URL",
	Timeout:     "IDSCAN_RECOGNIZER_TIMEOUT",
	Languages:   "IDSCAN_RECOGNIZER_LANGUAGES",
	DeleteAfter: "IDSCAN_RECOGNIZER_DELETE_AFTER",
}

var pipelineEnv = &extraction.Env{
	CropDir:          "IDSCAN_PIPELINE_CROP_DIR",
	KeepCrops:        "IDSCAN_PIPELINE_KEEP_CROPS",
	JPEGQuality:      "IDSCAN_PIPELINE_JPEG_QUALITY",
	DetectTimeout:    "IDSCAN_PIPELINE_DETECT_TIMEOUT",
	RecognizeTimeout: "IDSCAN_PIPELINE_RECOGNIZE_TIMEOUT",
}

// Config is the root configuration for the idscan service and CLI.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Log             LogConfig          `toml:"log"`
	Database        database.Config    `toml:"database"`
	Storage         storage.Config     `toml:"storage"`
	API             APIConfig          `toml:"api"`
	Detector        detection.Config   `toml:"detector"`
	Recognizer      recognition.Config `toml:"recognizer"`
	Pipeline        extraction.Config  `toml:"pipeline"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
	AutoMigrate     bool               `toml:"auto_migrate"`
}

// Env returns the IDSCAN_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvIDScanEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads config.toml from the working directory.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile reads the base config at path (if present), the .env file next to
// it, and any config.<IDSCAN_ENV>.toml overlay in the same directory, then
// finalizes all values. With no files present, defaults and environment
// variables provide all configuration.
func LoadFile(path string) (*Config, error) {
	dir := filepath.Dir(path)

	if err := loadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(dir); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.AutoMigrate {
		c.AutoMigrate = true
	}
	c.Server.Merge(&overlay.Server)
	c.Log.Merge(&overlay.Log)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Detector.Merge(&overlay.Detector)
	c.Recognizer.Merge(&overlay.Recognizer)
	c.Pipeline.Merge(&overlay.Pipeline)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Log.Finalize(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Detector.Finalize(detectorEnv); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if err := c.Recognizer.Finalize(recognizerEnv); err != nil {
		return fmt.Errorf("recognizer: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvIDScanShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvIDScanVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvIDScanAutoMigrate); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AutoMigrate = b
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// loadDotEnv sets variables from path without overriding ones already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func overlayPath(dir string) string {
	env := strings.TrimSpace(os.Getenv(EnvIDScanEnv))
	if env == "" {
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
