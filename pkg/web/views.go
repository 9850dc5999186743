// Package web serves server-rendered pages from pre-parsed Go templates along
// with embedded static assets.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef defines a page with its route, template file, and title.
type ViewDef struct {
	Route    string
	Template string
	Title    string
}

// ViewData is passed to page templates during rendering. BasePath is the
// mount point of the web module and APIBase the prefix of the JSON API, so
// templates can build URLs with {{ .BasePath }} and {{ .APIBase }}.
type ViewData struct {
	Title    string
	BasePath string
	APIBase  string
	Data     any
}

// TemplateSet holds one parsed template tree per view, each cloned from the
// shared layouts.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
	apiBase  string
}

// NewTemplateSet parses the layouts matching layoutGlob in fsys, then clones
// them once per view and parses the view template into the clone.
// Any parse error fails construction.
func NewTemplateSet(fsys fs.FS, layoutGlob, basePath, apiBase string, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	parsed := make(map[string]*template.Template, len(views))
	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(fsys, v.Template); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", v.Template, err)
		}
		parsed[v.Template] = t
	}

	return &TemplateSet{
		views:    parsed,
		basePath: basePath,
		apiBase:  apiBase,
	}, nil
}

// PageHandler returns an HTTP handler that renders the given view inside layout.
func (ts *TemplateSet) PageHandler(layout string, view ViewDef) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ViewData{
			Title:    view.Title,
			BasePath: ts.basePath,
			APIBase:  ts.apiBase,
		}
		if err := ts.Render(w, layout, view.Template, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// Render executes the named layout template of a parsed view.
func (ts *TemplateSet) Render(w http.ResponseWriter, layout, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, layout, data)
}
