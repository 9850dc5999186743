// Package storage provides keyed object storage with a local filesystem
// implementation and an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/idscan/pkg/lifecycle"
)

// System manages object storage operations and lifecycle coordination.
// Keys are slash-separated paths relative to the backend root.
type System interface {
	// Start registers a startup hook that initializes the backing container or directory.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes data to the object at key, replacing any existing content.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the object at key. The caller must close the reader.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key. Returns ErrNotFound if the object does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns every key beginning with prefix in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// New creates the storage system selected by cfg.Provider.
// Neither backend touches the underlying store until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderLocal:
		return newLocal(cfg, logger), nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
