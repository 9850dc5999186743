package scans

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/idscan/pkg/handlers"
	"github.com/JaimeStill/idscan/pkg/routes"
)

// Handler provides HTTP endpoints for the scan cycle.
type Handler struct {
	svc           *Service
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given upload size limit in bytes.
func NewHandler(svc *Service, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		svc:           svc,
		logger:        logger.With("handler", "scans"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for scan endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/scans",
		Tags:   []string{"Scans"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload, Doc: uploadDoc},
			{Method: "GET", Pattern: "/latest", Handler: h.Latest, Doc: latestDoc},
			{Method: "POST", Pattern: "/extract", Handler: h.Extract, Doc: extractLatestDoc},
			{Method: "POST", Pattern: "/save", Handler: h.Save, Doc: saveLatestDoc},
			{Method: "POST", Pattern: "/{handle}/extract", Handler: h.Extract, Doc: extractDoc},
			{Method: "POST", Pattern: "/{handle}/save", Handler: h.Save, Doc: saveDoc},
		},
	}
}

// LegacyRoutes serves the paths of the original identity card service, which
// always operate on the currently staged scan. Clients of that service send
// trailing slashes; module.Router trims them before dispatch.
func (h *Handler) LegacyRoutes() routes.Group {
	return routes.Group{
		Prefix: "/identity_cards",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/save_file", Handler: h.Upload},
			{Method: "GET", Pattern: "/show_inference_results", Handler: h.legacyExtract},
			{Method: "POST", Pattern: "/save_inference_results", Handler: h.Save},
			{Method: "GET", Pattern: "/get_inference_results", Handler: h.legacyRecords},
		},
	}
}

// Upload stages the multipart "file" field as the current scan.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	scan, err := h.svc.Upload(r.Context(), file, header.Filename)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, scan)
}

// Extract runs the pipeline on the scan named by the optional {handle} path
// value, or on the current scan when absent.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.handle(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Extract(r.Context(), handle)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Save persists the staged result named by the optional {handle} path value.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.handle(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Save(r.Context(), handle)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// Latest returns the current scan and its staged result.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.Latest(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, current)
}

func (h *Handler) legacyExtract(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Extract(r.Context(), uuid.Nil)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Result)
}

func (h *Handler) legacyRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Records(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	v := r.PathValue("handle")
	if v == "" {
		return uuid.Nil, true
	}

	id, err := uuid.Parse(v)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidScan)
		return uuid.Nil, false
	}
	return id, true
}
