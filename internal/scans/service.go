// Package scans runs the upload, extract, and save cycle for a single card
// and exposes it over HTTP.
package scans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/identities"
	"github.com/JaimeStill/idscan/internal/staging"
	"github.com/JaimeStill/idscan/pkg/pagination"
)

// Extractor runs field extraction on encoded image bytes.
type Extractor interface {
	ExtractImage(ctx context.Context, data []byte) (extraction.Result, error)
}

// Service coordinates the staging store, the extraction pipeline, and
// identity persistence. A uuid.Nil handle selects whatever is currently staged.
type Service struct {
	store      *staging.Store
	extractor  Extractor
	identities identities.System
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Service.
func New(store *staging.Store, extractor Extractor, ids identities.System, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		extractor:  extractor,
		identities: ids,
		logger:     logger.With("system", "scans"),
		now:        time.Now,
	}
}

// Handler creates the HTTP handler for the service.
func (s *Service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

// Upload stages the image read from r, superseding any previous scan.
func (s *Service) Upload(ctx context.Context, r io.Reader, filename string) (*Scan, error) {
	ref, err := s.store.StageImage(ctx, r, filename)
	if err != nil {
		return nil, err
	}

	scan := newScan(ref)
	scan.UploadedAt = s.now().UTC()
	return &scan, nil
}

// Extract runs the pipeline on the staged image for handle and stages the result.
func (s *Service) Extract(ctx context.Context, handle uuid.UUID) (*Extraction, error) {
	ref, err := s.image(ctx, handle)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.OpenImage(ctx, ref)
	if err != nil {
		if errors.Is(err, staging.ErrNotFound) {
			return nil, s.imageGone(ctx, ref.Handle, err)
		}
		return nil, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read staged image: %w", err)
	}

	result, err := s.extractor.ExtractImage(ctx, data)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.StageResult(ctx, ref.Handle, result); err != nil {
		return nil, err
	}

	return newExtraction(ref.Handle, result), nil
}

// Save persists the staged result for handle as an identity record. The
// staged result is left in place whether or not the save succeeds.
func (s *Service) Save(ctx context.Context, handle uuid.UUID) (*identities.Record, error) {
	var (
		ref staging.Ref
		err error
	)
	if handle == uuid.Nil {
		ref, err = s.store.Latest(ctx, staging.KindResult)
	} else {
		ref, err = s.store.Result(ctx, handle)
	}
	if err != nil {
		if errors.Is(err, staging.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
		}
		return nil, err
	}

	result, err := s.store.LoadResult(ctx, ref)
	if err != nil {
		if errors.Is(err, staging.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
		}
		return nil, err
	}

	cmd, err := identities.NewCreateCommand(result)
	if err != nil {
		return nil, err
	}

	rec, err := s.identities.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan saved", "handle", ref.Handle, "record", rec.ID)
	return rec, nil
}

// Latest returns the staged scan and its result when one has been extracted.
func (s *Service) Latest(ctx context.Context) (*Current, error) {
	ref, err := s.image(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}

	current := &Current{Scan: newScan(ref)}

	resRef, err := s.store.Result(ctx, ref.Handle)
	switch {
	case errors.Is(err, staging.ErrNotFound):
		return current, nil
	case err != nil:
		return nil, err
	}

	result, err := s.store.LoadResult(ctx, resRef)
	if err != nil {
		return nil, err
	}
	current.Result = &result
	return current, nil
}

// Records returns every saved identity record in id order.
func (s *Service) Records(ctx context.Context) ([]identities.Record, error) {
	all := []identities.Record{}
	for page := 1; ; page++ {
		res, err := s.identities.List(ctx, pagination.PageRequest{Page: page})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if page >= res.TotalPages {
			return all, nil
		}
	}
}

func (s *Service) image(ctx context.Context, handle uuid.UUID) (staging.Ref, error) {
	var (
		ref staging.Ref
		err error
	)
	if handle == uuid.Nil {
		ref, err = s.store.Latest(ctx, staging.KindImage)
	} else {
		ref, err = s.store.Image(ctx, handle)
	}
	if err != nil {
		if errors.Is(err, staging.ErrNotFound) {
			if handle == uuid.Nil {
				return staging.Ref{}, fmt.Errorf("%w: %w", ErrNoImage, err)
			}
			return staging.Ref{}, s.imageGone(ctx, handle, err)
		}
		return staging.Ref{}, err
	}
	return ref, nil
}

// imageGone explains a missing image for handle: when another image is
// current the handle was superseded, otherwise nothing is staged.
func (s *Service) imageGone(ctx context.Context, handle uuid.UUID, err error) error {
	if current, lerr := s.store.Latest(ctx, staging.KindImage); lerr == nil && current.Handle != handle {
		return fmt.Errorf("%w: scan %s replaced by %s", staging.ErrSuperseded, handle, current.Handle)
	}
	return fmt.Errorf("%w: %w", ErrNoImage, err)
}
