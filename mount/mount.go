// Package mount turns an openapi configuration into the routes a host router registers.
package mount

import (
	"net/http"

	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/internal/urlpath"
	"github.com/webasoo/specmount/redoc"
	"github.com/webasoo/specmount/scalar"
	"github.com/webasoo/specmount/spec"
	"github.com/webasoo/specmount/swagger"
)

// Route is one GET endpoint. Subtree routes also receive every path below Path.
type Route struct {
	Feature string
	Path    string
	Subtree bool
	Handler http.Handler
}

// Router is the part of a host router the mounter needs.
type Router interface {
	Get(path string, h http.Handler)
	Subtree(path string, h http.Handler)
}

// Option configures the handlers produced by Endpoints and Build.
type Option func(*options)

type options struct {
	onError spec.ErrorFunc
}

// WithErrorFunc makes every handler report failures through fn.
func WithErrorFunc(fn spec.ErrorFunc) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) exporter(format string, cache *spec.Cache) http.Handler {
	if format == config.FeatureYAML {
		return spec.YAMLHandler(cache, spec.WithErrorFunc(o.onError))
	}
	return spec.JSONHandler(cache, spec.WithErrorFunc(o.onError))
}

// Endpoints returns the raw exporter routes. An empty path is not exposed.
func Endpoints(cache *spec.Cache, jsonURL, yamlURL string, opts ...Option) []Route {
	o := newOptions(opts)
	var routes []Route
	if jsonURL != "" {
		routes = append(routes, Route{Feature: config.FeatureJSON, Path: jsonURL, Handler: o.exporter(config.FeatureJSON, cache)})
	}
	if yamlURL != "" {
		routes = append(routes, Route{Feature: config.FeatureYAML, Path: yamlURL, Handler: o.exporter(config.FeatureYAML, cache)})
	}
	return routes
}

// AddEndpoints registers the exporter routes on r and returns it.
func AddEndpoints(r Router, cache *spec.Cache, jsonURL, yamlURL string, opts ...Option) Router {
	Apply(r, Endpoints(cache, jsonURL, yamlURL, opts...))
	return r
}

type viewer struct {
	name  string
	block func(config.OpenAPI) *config.UI
	page  func(config.OpenAPI, *spec.Cache, spec.ErrorFunc) http.Handler
}

var viewers = []viewer{
	{
		name:  config.FeatureRedoc,
		block: func(c config.OpenAPI) *config.UI { return c.Redoc },
		page: func(c config.OpenAPI, cache *spec.Cache, onError spec.ErrorFunc) http.Handler {
			return redoc.Handler(redoc.Config{
				Path:        c.Redoc.URL,
				SpecJSONURL: c.Redoc.SpecJSONURL,
				SpecYAMLURL: c.Redoc.SpecYAMLURL,
				Title:       c.Redoc.Title,
				Cache:       cache,
				OnError:     onError,
			})
		},
	},
	{
		name:  config.FeatureScalar,
		block: func(c config.OpenAPI) *config.UI { return c.Scalar },
		page: func(c config.OpenAPI, cache *spec.Cache, onError spec.ErrorFunc) http.Handler {
			return scalar.Handler(scalar.Config{
				Path:        c.Scalar.URL,
				SpecJSONURL: c.Scalar.SpecJSONURL,
				SpecYAMLURL: c.Scalar.SpecYAMLURL,
				Title:       c.Scalar.Title,
				Cache:       cache,
				OnError:     onError,
			})
		},
	},
	{
		name: config.FeatureSwagger,
		block: func(c config.OpenAPI) *config.UI {
			if c.Swagger == nil {
				return nil
			}
			return &c.Swagger.UI
		},
		page: func(c config.OpenAPI, cache *spec.Cache, onError spec.ErrorFunc) http.Handler {
			return swagger.Handler(swagger.Config{
				Path:         c.Swagger.URL,
				SpecJSONURL:  c.Swagger.SpecJSONURL,
				SpecYAMLURL:  c.Swagger.SpecYAMLURL,
				DeepLinking:  c.Swagger.DeepLinking,
				DocExpansion: c.Swagger.DocExpansion,
				DomID:        c.Swagger.DomID,
				Cache:        cache,
				OnError:      onError,
			})
		},
	},
}

// Build returns the route table for cfg: raw exporters first, then every enabled viewer
// followed by its spec URLs. Spec URLs under a viewer path are left to that viewer.
func Build(cfg config.OpenAPI, cache *spec.Cache, opts ...Option) []Route {
	o := newOptions(opts)

	var subtrees []string
	for _, v := range viewers {
		if ui := v.block(cfg); ui != nil && ui.URL != "" {
			subtrees = append(subtrees, ui.URL)
		}
	}
	underViewer := func(p string) bool {
		for _, base := range subtrees {
			if _, ok := urlpath.Relative(base, p); ok {
				return true
			}
		}
		return false
	}

	var routes []Route
	type export struct{ path, format string }
	seen := map[export]bool{}
	for _, r := range Endpoints(cache, cfg.SpecJSONURL, cfg.SpecYAMLURL, opts...) {
		seen[export{r.Path, r.Feature}] = true
		if !underViewer(r.Path) {
			routes = append(routes, r)
		}
	}

	for _, v := range viewers {
		ui := v.block(cfg)
		if ui == nil {
			continue
		}
		routes = append(routes, Route{Feature: v.name, Path: ui.URL, Subtree: true, Handler: v.page(cfg, cache, o.onError)})

		for _, e := range []export{{ui.SpecJSONURL, config.FeatureJSON}, {ui.SpecYAMLURL, config.FeatureYAML}} {
			if e.path == "" || seen[e] || underViewer(e.path) {
				continue
			}
			seen[e] = true
			routes = append(routes, Route{Feature: v.name, Path: e.path, Handler: o.exporter(e.format, cache)})
		}
	}
	return routes
}

// Apply registers routes on r in order.
func Apply(r Router, routes []Route) {
	for _, route := range routes {
		if route.Subtree {
			r.Subtree(route.Path, route.Handler)
			continue
		}
		r.Get(route.Path, route.Handler)
	}
}
