package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/idscan/pkg/formatting"
	"github.com/JaimeStill/idscan/pkg/middleware"
	"github.com/JaimeStill/idscan/pkg/openapi"
	"github.com/JaimeStill/idscan/pkg/pagination"
)

const (
	EnvAPIBasePath      = "IDSCAN_API_BASE_PATH"
	EnvAPIMaxUploadSize = "IDSCAN_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "IDSCAN_CORS_ENABLED",
	Origins:          "IDSCAN_CORS_ORIGINS",
	AllowedMethods:   "IDSCAN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "IDSCAN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "IDSCAN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "IDSCAN_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "IDSCAN_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "IDSCAN_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.Env{
	Title:       "IDSCAN_OPENAPI_TITLE",
	Description: "IDSCAN_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload limits, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Finalize has already
// validated the value.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
