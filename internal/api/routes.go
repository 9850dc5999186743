package api

import (
	"net/http"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/identities"
	"github.com/JaimeStill/idscan/internal/scans"
	"github.com/JaimeStill/idscan/pkg/openapi"
	"github.com/JaimeStill/idscan/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Scans.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Identities.Handler().Routes(),
		newStagingHandler(
			runtime.Storage,
			runtime.Logger,
			cfg.Storage.MaxListSize,
		).routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(scans.Schemas())
	spec.Components.AddSchemas(identities.Schemas())

	routes.Document(spec, "", groups...)

	return openapi.MarshalJSON(spec)
}
