package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/idscan/pkg/openapi"
)

func TestConfigDefaults(t *testing.T) {
	var cfg openapi.Config
	cfg.Finalize(nil)

	if cfg.Title != "IDScan API" {
		t.Errorf("title: got %s", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description should default")
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Cards")

	var cfg openapi.Config
	cfg.Finalize(&openapi.Env{Title: "TEST_OPENAPI_TITLE"})

	if cfg.Title != "Cards" {
		t.Errorf("title: got %s, want Cards", cfg.Title)
	}
}

func TestNewSpec(t *testing.T) {
	cfg := openapi.Config{Title: "T", Description: "D"}
	spec := openapi.NewSpec(&cfg, "1.2.3")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %s", spec.OpenAPI)
	}
	if spec.Info.Version != "1.2.3" || spec.Info.Title != "T" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if _, ok := spec.Components.Schemas["Error"]; !ok {
		t.Error("Error schema missing")
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "UnprocessableEntity"} {
		if _, ok := spec.Components.Responses[name]; !ok {
			t.Errorf("response %s missing", name)
		}
	}
}

func TestPathItemSet(t *testing.T) {
	item := &openapi.PathItem{}
	op := &openapi.Operation{Summary: "x"}

	item.Set("post", op)
	item.Set("PATCH", op)

	if item.Post != op {
		t.Error("post slot not set")
	}
	if item.Get != nil || item.Put != nil || item.Delete != nil {
		t.Error("unexpected slots set")
	}
}

func TestPathParamFormats(t *testing.T) {
	id := openapi.PathParam("id", "int64", "record id")
	if id.Schema.Type != "integer" {
		t.Errorf("int64 param type: got %s", id.Schema.Type)
	}

	handle := openapi.PathParam("handle", "uuid", "scan handle")
	if handle.Schema.Type != "string" || handle.Schema.Format != "uuid" {
		t.Errorf("uuid param schema: got %+v", handle.Schema)
	}
}

func TestServeSpec(t *testing.T) {
	var cfg openapi.Config
	cfg.Finalize(nil)
	spec := openapi.NewSpec(&cfg, "0.1.0")
	spec.AddServer("/api")

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi field: got %v", parsed["openapi"])
	}
}
