package main

import (
	"time"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/infrastructure"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"modules", router.Prefixes(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http: newHTTPServer(
			&cfg.Server,
			router,
			infra.Logger,
			cfg.ShutdownTimeoutDuration(),
		),
	}, nil
}

// Start registers all systems and begins serving. Readiness follows the
// startup checks; a failed check is reported by WaitForStartup.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	return s.http.Start(s.infra.Lifecycle)
}

func (s *Server) WaitForStartup() error {
	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		return err
	}
	s.infra.Logger.Info("all subsystems ready")
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
