package identities

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/idscan/pkg/handlers"
	"github.com/JaimeStill/idscan/pkg/openapi"
	"github.com/JaimeStill/idscan/pkg/pagination"
	"github.com/JaimeStill/idscan/pkg/routes"
)

// Handler provides HTTP endpoints for saved identity records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "identities"),
		pagination: pagination,
	}
}

// Routes returns the route group for identity endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/identities",
		Tags:   []string{"Identities"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Doc: listDoc},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Doc: findDoc},
		},
	}
}

// List returns a page of saved records.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns one record by numeric id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalid)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Schemas returns the component schemas referenced by identity routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"IdentityRecord": {
			Type:     "object",
			Required: []string{"id", "identity_number", "surname", "name", "birth_date", "created_at"},
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "integer", Format: "int64"},
				"identity_number": {Type: "string", Pattern: "^[0-9]{11}$"},
				"surname":         {Type: "string"},
				"name":            {Type: "string"},
				"birth_date":      {Type: "string", Format: "date"},
				"created_at":      {Type: "string", Format: "date"},
			},
		},
		"IdentityPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("IdentityRecord")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}

var listDoc = &openapi.Operation{
	Summary:    "List saved identity records",
	Parameters: openapi.PageParams(),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of records", "IdentityPage"),
		500: openapi.ResponseRef("InternalError"),
	},
}

var findDoc = &openapi.Operation{
	Summary:    "Find an identity record",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "int64", "Record id")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Record", "IdentityRecord"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
