// Package redoc serves a Redoc viewer for the cached specification document.
package redoc

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/webasoo/specmount/internal/urlpath"
	"github.com/webasoo/specmount/spec"
)

const (
	indexFile    = "index.html"
	defaultTitle = "Redoc"
)

// Config describes one mounted Redoc viewer.
type Config struct {
	// Path is the viewer URL. The handler owns Path and everything below it.
	Path string

	// SpecJSONURL is the document URL passed to Redoc. When empty the page embeds the document.
	SpecJSONURL string

	// SpecYAMLURL is served by the handler when it lies below Path.
	SpecYAMLURL string

	Title   string
	Cache   *spec.Cache
	OnError spec.ErrorFunc
}

type pageData struct {
	Title string
	Spec  template.JS
}

// Handler returns an http.Handler that serves the Redoc page and any spec URL nested under cfg.Path.
func Handler(cfg Config) http.Handler {
	onError := cfg.OnError
	if onError == nil {
		onError = plainError
	}
	opts := []spec.HandlerOption{spec.WithErrorFunc(cfg.OnError)}
	jsonFile := nestedName(cfg.Path, cfg.SpecJSONURL)
	yamlFile := nestedName(cfg.Path, cfg.SpecYAMLURL)
	jsonHandler := spec.JSONHandler(cfg.Cache, opts...)
	yamlHandler := spec.YAMLHandler(cfg.Cache, opts...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, ok := urlpath.Relative(cfg.Path, r.URL.Path)
		switch {
		case !ok:
			http.NotFound(w, r)
		case target == "" || target == indexFile:
			servePage(w, r, cfg, onError)
		case target == jsonFile:
			jsonHandler.ServeHTTP(w, r)
		case target == yamlFile:
			yamlHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func servePage(w http.ResponseWriter, r *http.Request, cfg Config, onError spec.ErrorFunc) {
	doc := cfg.Cache.Get()

	data := pageData{Title: cfg.Title}
	if data.Title == "" && doc.Info != nil {
		data.Title = doc.Info.Title
	}
	if data.Title == "" {
		data.Title = defaultTitle
	}

	var source []byte
	var err error
	if cfg.SpecJSONURL != "" {
		source, err = json.Marshal(cfg.SpecJSONURL)
	} else {
		source, err = spec.MarshalJSON(doc)
	}
	if err != nil {
		onError(w, r, http.StatusInternalServerError, err)
		return
	}
	data.Spec = template.JS(source)

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		onError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// nestedName returns the name of target below prefix, or "" when target is mounted elsewhere.
func nestedName(prefix, target string) string {
	if target == "" || !urlpath.Nested(prefix, target) {
		return ""
	}
	rel, _ := urlpath.Relative(prefix, target)
	return rel
}

func plainError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, "redoc: "+err.Error(), status)
}
