// Package staging holds the single current card image and the single
// current extraction result between the steps of a scan cycle.
//
// Every StageImage supersedes the previous image and any result derived from
// it. Handles returned by StageImage thread a cycle through extract and save;
// a result can only be staged for the handle whose image is still current.
package staging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/pkg/storage"
)

// Store stages images and results on a storage.System.
type Store struct {
	storage storage.System
	logger  *slog.Logger
	mu      sync.Mutex
}

// New creates a Store backed by store.
func New(store storage.System, logger *slog.Logger) *Store {
	return &Store{
		storage: store,
		logger:  logger.With("system", "staging"),
	}
}

// StageImage replaces every staged image and result with the image read from r.
func (s *Store) StageImage(ctx context.Context, r io.Reader, filename string) (Ref, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return Ref{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clear(ctx, imagePrefix, ""); err != nil {
		return Ref{}, err
	}
	if err := s.clear(ctx, resultPrefix, ""); err != nil {
		return Ref{}, err
	}

	handle := uuid.New()
	ref := Ref{Kind: KindImage, Handle: handle, Key: imageKey(handle, name), Filename: name}

	contentType := mime.TypeByExtension(path.Ext(name))
	if err := s.storage.Upload(ctx, ref.Key, r, contentType); err != nil {
		return Ref{}, fmt.Errorf("stage image: %w", err)
	}

	s.logger.Info("image staged", "handle", handle, "key", ref.Key)
	return ref, nil
}

// StageResult stores result for handle, replacing any other staged result.
// Returns ErrSuperseded when handle no longer names the current image.
func (s *Store) StageResult(ctx context.Context, handle uuid.UUID, result extraction.Result) (Ref, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return Ref{}, fmt.Errorf("encode result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.find(ctx, imagePrefix+handle.String()+"/"); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Ref{}, fmt.Errorf("%w: %s", ErrSuperseded, handle)
		}
		return Ref{}, err
	}

	key := resultKey(handle)
	if err := s.clear(ctx, resultPrefix, key); err != nil {
		return Ref{}, err
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return Ref{}, fmt.Errorf("stage result: %w", err)
	}

	s.logger.Info("result staged", "handle", handle, "key", key)
	return Ref{Kind: KindResult, Handle: handle, Key: key}, nil
}

// Latest returns the first staged object of kind in lexicographic key order.
// Only one of each kind exists when cycles run one at a time; if a crash left
// several behind, the lexicographically first wins.
func (s *Store) Latest(ctx context.Context, kind Kind) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(ctx, kind.prefix())
}

// Image returns the staged image for handle.
func (s *Store) Image(ctx context.Context, handle uuid.UUID) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(ctx, imagePrefix+handle.String()+"/")
}

// Result returns the staged result for handle.
func (s *Store) Result(ctx context.Context, handle uuid.UUID) (Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resultKey(handle)
	ok, err := s.storage.Exists(ctx, key)
	if err != nil {
		return Ref{}, fmt.Errorf("check result: %w", err)
	}
	if !ok {
		return Ref{}, fmt.Errorf("%w: result %s", ErrNotFound, handle)
	}
	return Ref{Kind: KindResult, Handle: handle, Key: key}, nil
}

// OpenImage streams the staged image at ref. The caller must close the reader.
func (s *Store) OpenImage(ctx context.Context, ref Ref) (io.ReadCloser, error) {
	rc, err := s.storage.Download(ctx, ref.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.Key)
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	return rc, nil
}

// LoadResult decodes the staged result at ref.
func (s *Store) LoadResult(ctx context.Context, ref Ref) (extraction.Result, error) {
	rc, err := s.storage.Download(ctx, ref.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return extraction.Result{}, fmt.Errorf("%w: %s", ErrNotFound, ref.Key)
		}
		return extraction.Result{}, fmt.Errorf("load result: %w", err)
	}
	defer rc.Close()

	var result extraction.Result
	if err := json.NewDecoder(rc).Decode(&result); err != nil {
		return extraction.Result{}, fmt.Errorf("decode result %s: %w", ref.Key, err)
	}
	return result, nil
}

func (s *Store) find(ctx context.Context, prefix string) (Ref, error) {
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return Ref{}, fmt.Errorf("list %s: %w", prefix, err)
	}

	for _, key := range keys {
		if ref, ok := parseKey(key); ok {
			if len(keys) > 1 {
				s.logger.Warn("multiple staged objects", "prefix", prefix, "count", len(keys), "using", key)
			}
			return ref, nil
		}
	}
	return Ref{}, fmt.Errorf("%w: %s", ErrNotFound, prefix)
}

// clear deletes every key under prefix except keep.
func (s *Store) clear(ctx context.Context, prefix, keep string) error {
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}

	for _, key := range keys {
		if key == keep {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
