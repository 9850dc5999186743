// Package routes declares HTTP routes in prefix groups that can be registered
// on a ServeMux and described in an OpenAPI document.
package routes

import (
	"net/http"

	"github.com/JaimeStill/idscan/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags apply to every
// documented operation in the group and its children.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", nil, group, func(path string, _ []string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Document adds every route carrying a Doc to spec under basePath.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, group := range groups {
		walk("", nil, group, func(path string, tags []string, r Route) {
			if r.Doc == nil {
				return
			}

			op := *r.Doc
			if len(op.Tags) == 0 {
				op.Tags = tags
			}

			key := basePath + path
			if key == "" {
				key = "/"
			}

			item, ok := spec.Paths[key]
			if !ok {
				item = &openapi.PathItem{}
				spec.Paths[key] = item
			}
			item.Set(r.Method, &op)
		})
	}
}

func walk(parent string, parentTags []string, group Group, visit func(path string, tags []string, r Route)) {
	prefix := parent + group.Prefix
	tags := parentTags
	if len(group.Tags) > 0 {
		tags = group.Tags
	}

	for _, route := range group.Routes {
		visit(prefix+route.Pattern, tags, route)
	}
	for _, child := range group.Children {
		walk(prefix, tags, child, visit)
	}
}
