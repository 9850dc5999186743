package api

import (
	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/infrastructure"
	"github.com/JaimeStill/idscan/pkg/middleware"
	"github.com/JaimeStill/idscan/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Config      *config.Config
	Pagination  pagination.Config
	HTTPMetrics *middleware.HTTPMetrics
}

// NewRuntime creates an API runtime with a module-scoped logger.
// Request metrics are registered with the infrastructure registry.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Metrics:   infra.Metrics,
		},
		Config:      cfg,
		Pagination:  cfg.API.Pagination,
		HTTPMetrics: middleware.NewHTTPMetrics(infra.Metrics),
	}
}
