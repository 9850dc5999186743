// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/infrastructure"
	"github.com/JaimeStill/idscan/pkg/middleware"
	"github.com/JaimeStill/idscan/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Legacy identity card routes are served by a separate handler; see Legacy.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Metrics(runtime.HTTPMetrics))

	return m, domain, nil
}
