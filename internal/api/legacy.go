package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/pkg/middleware"
	"github.com/JaimeStill/idscan/pkg/routes"
)

// LegacyPrefix is the path under which Legacy serves requests.
const LegacyPrefix = "/identity_cards/"

// Legacy returns a handler for the identity card paths of the original
// service. It shares the API domain and upload limit but is mounted outside
// the API base path.
func Legacy(cfg *config.Config, domain *Domain, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	routes.Register(
		mux,
		domain.Scans.Handler(cfg.API.MaxUploadSizeBytes()).LegacyRoutes(),
	)

	stack := middleware.New()
	stack.Use(middleware.CORS(&cfg.API.CORS))
	stack.Use(middleware.Logger(logger.With("module", "legacy")))
	return stack.Apply(mux)
}
