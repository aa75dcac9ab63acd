// Package swagger serves Swagger UI for the cached specification document.
//
// The index page and the swagger-ui-dist bundle come from swaggo/http-swagger.
package swagger

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/webasoo/specmount/internal/urlpath"
	"github.com/webasoo/specmount/spec"
)

const (
	indexFile = "index.html"
	// docFile is the swag registry document http-swagger serves on its own. It is never ours.
	docFile = "doc.json"
)

// Config describes one mounted Swagger UI.
type Config struct {
	// Path is the UI URL. Swagger UI lives at Path/ and Path redirects there.
	Path string

	// SpecJSONURL is the document URL the UI fetches. It is required.
	SpecJSONURL string

	// SpecYAMLURL is served by the handler when it lies below Path.
	SpecYAMLURL string

	DeepLinking  bool
	DocExpansion string
	DomID        string

	Cache   *spec.Cache
	OnError spec.ErrorFunc
}

// Handler returns an http.Handler that serves Swagger UI, its assets and any spec URL nested under cfg.Path.
func Handler(cfg Config) http.Handler {
	base := urlpath.Clean(cfg.Path)
	ui := httpSwagger.Handler(uiOptions(cfg)...)

	opts := []spec.HandlerOption{spec.WithErrorFunc(cfg.OnError)}
	files := map[string]http.Handler{}
	if urlpath.Nested(base, cfg.SpecJSONURL) {
		name, _ := urlpath.Relative(base, cfg.SpecJSONURL)
		files[name] = spec.JSONHandler(cfg.Cache, opts...)
	}
	if urlpath.Nested(base, cfg.SpecYAMLURL) {
		name, _ := urlpath.Relative(base, cfg.SpecYAMLURL)
		files[name] = spec.YAMLHandler(cfg.Cache, opts...)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, ok := urlpath.Relative(base, r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if h, ok := files[target]; ok {
			h.ServeHTTP(w, r)
			return
		}

		switch {
		case target == "" && base != "/" && !strings.HasSuffix(r.URL.Path, "/"):
			http.Redirect(w, r, base+"/", http.StatusMovedPermanently)
		case target == "" || target == indexFile:
			ui.ServeHTTP(w, rewrite(r, urlpath.Join(base, indexFile)))
		case target == docFile || strings.Contains(target, "/"):
			// Assets are flat; anything deeper would reset the bundle prefix.
			http.NotFound(w, r)
		default:
			ui.ServeHTTP(w, rewrite(r, urlpath.Join(base, target)))
		}
	})
}

func uiOptions(cfg Config) []func(*httpSwagger.Config) {
	opts := []func(*httpSwagger.Config){
		httpSwagger.URL(cfg.SpecJSONURL),
		httpSwagger.DeepLinking(cfg.DeepLinking),
	}
	if cfg.DocExpansion != "" {
		opts = append(opts, httpSwagger.DocExpansion(cfg.DocExpansion))
	}
	if cfg.DomID != "" {
		opts = append(opts, httpSwagger.DomID(cfg.DomID))
	}
	return opts
}

// rewrite points the request at target. http-swagger dispatches on RequestURI, not URL.Path.
func rewrite(r *http.Request, target string) *http.Request {
	out := r.Clone(r.Context())
	out.URL.Path = target
	out.URL.RawPath = ""
	out.URL.RawQuery = ""
	out.RequestURI = target
	return out
}
