package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/idscan/pkg/openapi"
	"github.com/JaimeStill/idscan/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func groups() routes.Group {
	return routes.Group{
		Prefix: "/scans",
		Tags:   []string{"Scans"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: ok, Doc: &openapi.Operation{Summary: "Upload"}},
			{Method: "GET", Pattern: "/latest", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/{handle}",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/extract", Handler: ok, Doc: &openapi.Operation{Summary: "Extract"}},
				},
			},
		},
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, groups())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"upload", "POST", "/scans", http.StatusOK},
		{"latest", "GET", "/scans/latest", http.StatusOK},
		{"nested child", "POST", "/scans/abc/extract", http.StatusOK},
		{"wrong method", "GET", "/scans", http.StatusMethodNotAllowed},
		{"unknown", "GET", "/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	var cfg openapi.Config
	cfg.Finalize(nil)
	spec := openapi.NewSpec(&cfg, "0.1.0")

	routes.Document(spec, "/api", groups())

	upload := spec.Paths["/api/scans"]
	if upload == nil || upload.Post == nil {
		t.Fatal("upload operation not documented")
	}
	if len(upload.Post.Tags) != 1 || upload.Post.Tags[0] != "Scans" {
		t.Errorf("tags: got %v, want [Scans]", upload.Post.Tags)
	}

	extract := spec.Paths["/api/scans/{handle}/extract"]
	if extract == nil || extract.Post == nil || extract.Post.Summary != "Extract" {
		t.Error("child operation should inherit group prefix and tags")
	}

	if _, ok := spec.Paths["/api/scans/latest"]; ok {
		t.Error("routes without Doc should not be documented")
	}
}
