// Package chidocs mounts the specification endpoints and documentation UIs on a chi router.
package chidocs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/internal/specfile"
	"github.com/webasoo/specmount/mount"
	"github.com/webasoo/specmount/spec"
)

type router struct {
	r chi.Router
}

// Router adapts r to mount.Router. Subtrees are registered as path and path/*.
func Router(r chi.Router) mount.Router {
	return router{r: r}
}

func (a router) Get(path string, h http.Handler) {
	a.r.Method(http.MethodGet, path, h)
}

func (a router) Subtree(path string, h http.Handler) {
	a.r.Method(http.MethodGet, path, h)
	a.r.Method(http.MethodGet, strings.TrimSuffix(path, "/")+"/*", h)
}

// Register validates cfg and mounts every enabled endpoint serving the document in cache.
func Register(r chi.Router, cfg config.OpenAPI, cache *spec.Cache, opts ...mount.Option) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("chidocs: %w", err)
	}
	mount.Apply(Router(r), mount.Build(cfg, cache, opts...))
	return nil
}

// RegisterFile loads a document from disk into a fresh cache and mounts it.
// An empty path loads openapi.json from the module root.
func RegisterFile(r chi.Router, cfg config.OpenAPI, path string, opts ...mount.Option) (*openapi3.T, error) {
	doc, err := specfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("chidocs: %w", err)
	}
	cache := spec.NewCache()
	cache.Set(doc)
	if err := Register(r, cfg, cache, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}
