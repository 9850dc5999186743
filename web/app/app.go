// Package app serves the browser UI for uploading a card, reviewing the
// extracted fields, and saving them.
package app

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/JaimeStill/idscan/pkg/module"
	"github.com/JaimeStill/idscan/pkg/web"
)

//go:embed templates/*.html static/*
var appFS embed.FS

const layout = "layout"

var views = []web.ViewDef{
	{Route: "/{$}", Template: "templates/scan.html", Title: "Scan"},
	{Route: "/records", Template: "templates/records.html", Title: "Records"},
}

// NewModule creates the UI module mounted at basePath. Pages call the JSON
// API under apiBase.
func NewModule(basePath, apiBase string) (*module.Module, error) {
	ts, err := web.NewTemplateSet(appFS, "templates/layout.html", basePath, apiBase, views)
	if err != nil {
		return nil, fmt.Errorf("app templates: %w", err)
	}

	static, err := web.Static(appFS, "static", "/static")
	if err != nil {
		return nil, fmt.Errorf("app static: %w", err)
	}

	router := web.NewRouter()
	for _, v := range views {
		router.Handle("GET "+v.Route, ts.PageHandler(layout, v))
	}
	router.Handle("GET /static/", static)
	router.SetFallback(http.RedirectHandler(basePath+"/", http.StatusFound))

	return module.New(basePath, router), nil
}
