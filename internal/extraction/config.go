package extraction

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls crop handling and stage timeouts for a Pipeline.
type Config struct {
	CropDir          string `toml:"crop_dir"`
	KeepCrops        *bool  `toml:"keep_crops"`
	JPEGQuality      int    `toml:"jpeg_quality"`
	DetectTimeout    string `toml:"detect_timeout"`
	RecognizeTimeout string `toml:"recognize_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CropDir          string
	KeepCrops        string
	JPEGQuality      string
	DetectTimeout    string
	RecognizeTimeout string
}

// Keep reports whether per-run crop directories survive the run.
func (c *Config) Keep() bool {
	return c.KeepCrops != nil && *c.KeepCrops
}

// DetectTimeoutDuration returns DetectTimeout as a time.Duration.
func (c *Config) DetectTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DetectTimeout)
	return d
}

// RecognizeTimeoutDuration returns RecognizeTimeout as a time.Duration.
func (c *Config) RecognizeTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RecognizeTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.CropDir != "" {
		c.CropDir = overlay.CropDir
	}
	if overlay.KeepCrops != nil {
		c.KeepCrops = overlay.KeepCrops
	}
	if overlay.JPEGQuality != 0 {
		c.JPEGQuality = overlay.JPEGQuality
	}
	if overlay.DetectTimeout != "" {
		c.DetectTimeout = overlay.DetectTimeout
	}
	if overlay.RecognizeTimeout != "" {
		c.RecognizeTimeout = overlay.RecognizeTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.CropDir == "" {
		c.CropDir = os.TempDir()
	}
	if c.KeepCrops == nil {
		keep := false
		c.KeepCrops = &keep
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 95
	}
	if c.DetectTimeout == "" {
		c.DetectTimeout = "30s"
	}
	if c.RecognizeTimeout == "" {
		c.RecognizeTimeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CropDir != "" {
		if v := os.Getenv(env.CropDir); v != "" {
			c.CropDir = v
		}
	}
	if env.KeepCrops != "" {
		if v := os.Getenv(env.KeepCrops); v != "" {
			if keep, err := strconv.ParseBool(v); err == nil {
				c.KeepCrops = &keep
			}
		}
	}
	if env.JPEGQuality != "" {
		if v := os.Getenv(env.JPEGQuality); v != "" {
			if q, err := strconv.Atoi(v); err == nil {
				c.JPEGQuality = q
			}
		}
	}
	if env.DetectTimeout != "" {
		if v := os.Getenv(env.DetectTimeout); v != "" {
			c.DetectTimeout = v
		}
	}
	if env.RecognizeTimeout != "" {
		if v := os.Getenv(env.RecognizeTimeout); v != "" {
			c.RecognizeTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100: %d", c.JPEGQuality)
	}
	if d, err := time.ParseDuration(c.DetectTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid detect_timeout: %q", c.DetectTimeout)
	}
	if d, err := time.ParseDuration(c.RecognizeTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid recognize_timeout: %q", c.RecognizeTimeout)
	}
	return nil
}
