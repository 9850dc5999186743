package recognition

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// EngineKind selects the text recognition backend.
type EngineKind string

const (
	EngineVision EngineKind = "vision"
	EngineHTTP   EngineKind = "http"
)

// Config selects and configures the recognition engine.
type Config struct {
	Engine      EngineKind `toml:"engine"`
	BaseURL     string     `toml:"base_url"`
	Timeout     string     `toml:"timeout"`
	Languages   []string   `toml:"languages"`
	DeleteAfter bool       `toml:"delete_after"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Engine      string
	BaseURL     string
	Timeout     string
	Languages   string
	DeleteAfter string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.Engine != "" {
		c.Engine = overlay.Engine
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if len(overlay.Languages) > 0 {
		c.Languages = overlay.Languages
	}
	if overlay.DeleteAfter {
		c.DeleteAfter = true
	}
}

func (c *Config) loadDefaults() {
	if c.Engine == "" {
		c.Engine = EngineHTTP
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8002"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"tr", "en"}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Engine != "" {
		if v := os.Getenv(env.Engine); v != "" {
			c.Engine = EngineKind(v)
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Languages != "" {
		if v := os.Getenv(env.Languages); v != "" {
			langs := strings.Split(v, ",")
			for i, l := range langs {
				langs[i] = strings.TrimSpace(l)
			}
			c.Languages = langs
		}
	}
	if env.DeleteAfter != "" {
		if v := os.Getenv(env.DeleteAfter); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.DeleteAfter = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Engine {
	case EngineVision:
	case EngineHTTP:
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url: %q", c.BaseURL)
		}
	default:
		return fmt.Errorf("unsupported engine: %s", c.Engine)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
