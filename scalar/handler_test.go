package scalar

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webasoo/specmount/spec"
)

func testCache() *spec.Cache {
	cache := spec.NewCache()
	cache.Set(&openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "Album API", Version: "1.0.0"},
		Paths:   openapi3.NewPaths(),
	})
	return cache
}

func TestHandler(t *testing.T) {
	h := Handler(Config{
		Path:        "/scalar",
		SpecJSONURL: "/scalar/openapi.json",
		SpecYAMLURL: "/openapi.yaml",
		Cache:       testCache(),
	})

	cases := []struct {
		target      string
		status      int
		contentType string
		contains    string
	}{
		{"/scalar", http.StatusOK, "text/html; charset=utf-8", `{"url":"/scalar/openapi.json"}`},
		{"/scalar/", http.StatusOK, "text/html; charset=utf-8", "<title>Album API</title>"},
		{"/scalar/index.html?theme=purple", http.StatusOK, "text/html; charset=utf-8", "@scalar/api-reference"},
		{"/scalar/openapi.json", http.StatusOK, spec.ContentTypeJSON, `"title":"Album API"`},
		{"/scalar/openapi.yaml", http.StatusNotFound, "", ""},
		{"/scalar/standalone.js", http.StatusNotFound, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.target, nil))
			require.Equal(t, tc.status, w.Code)
			if tc.contentType != "" {
				assert.Equal(t, tc.contentType, w.Header().Get("Content-Type"))
			}
			assert.Contains(t, w.Body.String(), tc.contains)
		})
	}
}

func TestHandler_InlineContent(t *testing.T) {
	h := Handler(Config{Path: "/reference", Title: "Reference", Cache: testCache()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reference", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"content":{`)
	assert.Contains(t, w.Body.String(), "<title>Reference</title>")
}

func TestHandler_UninitializedCachePanics(t *testing.T) {
	h := Handler(Config{Path: "/scalar", Cache: spec.NewCache()})
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/scalar", nil))
	})
}
