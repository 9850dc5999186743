package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/JaimeStill/idscan/pkg/handlers"
	"github.com/JaimeStill/idscan/pkg/routes"
	"github.com/JaimeStill/idscan/pkg/storage"
)

// stagingListing is the response body of GET /staging.
type stagingListing struct {
	Keys      []string `json:"keys"`
	Truncated bool     `json:"truncated"`
}

// stagingHandler exposes the raw staging objects for inspection.
type stagingHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newStagingHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
) *stagingHandler {
	return &stagingHandler{
		store:       store,
		logger:      logger.With("handler", "staging"),
		maxListSize: maxListSize,
	}
}

func (h *stagingHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/staging",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *stagingHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	maxResults, err := storage.ParseMaxResults(
		r.URL.Query().Get("max_results"),
		h.maxListSize,
	)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest, err,
		)
		return
	}

	keys, err := h.store.List(r.Context(), prefix)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusInternalServerError, err,
		)
		return
	}

	listing := stagingListing{Keys: keys}
	if keys == nil {
		listing.Keys = []string{}
	}
	if len(listing.Keys) > int(maxResults) {
		listing.Keys = listing.Keys[:maxResults]
		listing.Truncated = true
	}

	handlers.RespondJSON(w, http.StatusOK, listing)
}

func (h *stagingHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("inline; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
