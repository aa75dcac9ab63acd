// Package scalar serves the Scalar API reference for the cached specification document.
package scalar

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
	defaultTitle = "Scalar API Reference"
)

// Config describes one mounted Scalar reference.
type Config struct {
	// Path is the reference URL. The handler owns Path and everything below it.
	Path string

	// SpecJSONURL is fetched by the page. When empty the document is passed inline as content.
	SpecJSONURL string

	// SpecYAMLURL is served by the handler when it lies below Path.
	SpecYAMLURL string

	Title   string
	Cache   *spec.Cache
	OnError spec.ErrorFunc
}

type configuration struct {
	URL     string          `json:"url,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type pageData struct {
	Title         string
	Configuration template.JS
}

// Handler returns an http.Handler that serves the Scalar page and any spec URL nested under cfg.Path.
func Handler(cfg Config) http.Handler {
	onError := cfg.OnError
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, "scalar: "+err.Error(), status)
		}
	}
	opts := []spec.HandlerOption{spec.WithErrorFunc(cfg.OnError)}
	files := map[string]http.Handler{}
	if name, ok := nestedName(cfg.Path, cfg.SpecJSONURL); ok {
		files[name] = spec.JSONHandler(cfg.Cache, opts...)
	}
	if name, ok := nestedName(cfg.Path, cfg.SpecYAMLURL); ok {
		files[name] = spec.YAMLHandler(cfg.Cache, opts...)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, ok := urlpath.Relative(cfg.Path, r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if target == "" || target == indexFile {
			servePage(w, r, cfg, onError)
			return
		}
		if h, ok := files[target]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func servePage(w http.ResponseWriter, r *http.Request, cfg Config, onError spec.ErrorFunc) {
	doc := cfg.Cache.Get()

	conf := configuration{URL: cfg.SpecJSONURL}
	if conf.URL == "" {
		content, err := spec.MarshalJSON(doc)
		if err != nil {
			onError(w, r, http.StatusInternalServerError, err)
			return
		}
		conf.Content = content
	}
	raw, err := json.Marshal(conf)
	if err != nil {
		onError(w, r, http.StatusInternalServerError, err)
		return
	}

	data := pageData{Title: cfg.Title, Configuration: template.JS(raw)}
	if data.Title == "" && doc.Info != nil {
		data.Title = doc.Info.Title
	}
	if data.Title == "" {
		data.Title = defaultTitle
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		onError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func nestedName(prefix, target string) (string, bool) {
	if target == "" || !urlpath.Nested(prefix, target) {
		return "", false
	}
	return urlpath.Relative(prefix, target)
}
