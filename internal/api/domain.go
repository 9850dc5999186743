package api

import (
	"fmt"

	"github.com/JaimeStill/idscan/internal/detection"
	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/identities"
	"github.com/JaimeStill/idscan/internal/recognition"
	"github.com/JaimeStill/idscan/internal/scans"
	"github.com/JaimeStill/idscan/internal/staging"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Staging    *staging.Store
	Detector   *detection.Client
	Recognizer *recognition.Reader
	Pipeline   *extraction.Pipeline
	Identities identities.System
	Scans      *scans.Service
}

// NewDomain creates all domain systems from the API runtime and registers the
// model clients with the lifecycle, so an unreachable detector or recognizer
// fails startup.
func NewDomain(runtime *Runtime) (*Domain, error) {
	cfg := runtime.Config

	detector := detection.New(&cfg.Detector, runtime.Logger)
	if err := detector.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("detector start failed: %w", err)
	}

	recognizer, err := recognition.New(runtime.Lifecycle.Context(), &cfg.Recognizer, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("recognizer init failed: %w", err)
	}
	if err := recognizer.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("recognizer start failed: %w", err)
	}

	pipeline := extraction.New(
		&cfg.Pipeline,
		detector,
		recognizer,
		runtime.Logger,
		extraction.NewMetrics(runtime.Metrics),
	)

	store := staging.New(runtime.Storage, runtime.Logger)

	identitiesSystem := identities.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	scansService := scans.New(
		store,
		pipeline,
		identitiesSystem,
		runtime.Logger,
	)

	return &Domain{
		Staging:    store,
		Detector:   detector,
		Recognizer: recognizer,
		Pipeline:   pipeline,
		Identities: identitiesSystem,
		Scans:      scansService,
	}, nil
}
