package mount_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	chidocs "github.com/webasoo/specmount/chi-docs"
	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/mount"
	"github.com/webasoo/specmount/spec"
)

func testCache() *spec.Cache {
	cache := spec.NewCache()
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "Album API", Version: "1.0.0"},
		Paths:   openapi3.NewPaths(),
	}
	doc.AddOperation("/api/album/get_album", http.MethodGet, &openapi3.Operation{
		Summary:   "Get album",
		Responses: openapi3.NewResponses(),
	})
	cache.Set(doc)
	return cache
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

type recorder struct {
	calls []string
}

func (r *recorder) Get(path string, _ http.Handler)     { r.calls = append(r.calls, "get "+path) }
func (r *recorder) Subtree(path string, _ http.Handler) { r.calls = append(r.calls, "subtree "+path) }

func TestEndpoints(t *testing.T) {
	cache := testCache()

	assert.Empty(t, mount.Endpoints(cache, "", ""))

	routes := mount.Endpoints(cache, "/openapi.json", "")
	require.Len(t, routes, 1)
	assert.Equal(t, config.FeatureJSON, routes[0].Feature)
	assert.False(t, routes[0].Subtree)

	rec := &recorder{}
	out := mount.AddEndpoints(rec, cache, "/openapi.json", "/openapi.yaml")
	assert.Same(t, rec, out)
	assert.Equal(t, []string{"get /openapi.json", "get /openapi.yaml"}, rec.calls)
}

func TestBuild_Order(t *testing.T) {
	cfg := config.OpenAPI{
		SpecJSONURL: "/openapi.json",
		Redoc:       &config.UI{URL: "/redoc", SpecJSONURL: "/openapi.json", SpecYAMLURL: "/redoc.yaml"},
		Swagger: &config.SwaggerUI{UI: config.UI{
			URL:         "/swagger",
			SpecJSONURL: "/swagger/openapi.json",
		}},
	}

	rec := &recorder{}
	mount.Apply(rec, mount.Build(cfg, testCache()))
	assert.Equal(t, []string{
		"get /openapi.json",
		"subtree /redoc",
		"get /redoc.yaml",
		"subtree /swagger",
	}, rec.calls)
}

func TestBuild_SpecURLUnderViewerIsLeftToViewer(t *testing.T) {
	cfg := config.OpenAPI{
		SpecJSONURL: "/swagger/openapi.json",
		Redoc:       &config.UI{URL: "/redoc", SpecJSONURL: "/swagger/openapi.json"},
		Swagger: &config.SwaggerUI{UI: config.UI{
			URL:         "/swagger",
			SpecJSONURL: "/swagger/openapi.json",
		}},
	}
	require.NoError(t, cfg.Validate())

	rec := &recorder{}
	routes := mount.Build(cfg, testCache())
	mount.Apply(rec, routes)
	assert.Equal(t, []string{"subtree /redoc", "subtree /swagger"}, rec.calls)

	r := chi.NewRouter()
	mount.Apply(chidocs.Router(r), routes)
	w := get(r, "/swagger/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, spec.ContentTypeJSON, w.Header().Get("Content-Type"))
}

func TestBuild_DisabledConfigMountsNothing(t *testing.T) {
	assert.Empty(t, mount.Build(config.OpenAPI{}, testCache()))
}

type probe struct {
	feature string
	target  string
}

var probes = []probe{
	{config.FeatureJSON, "/openapi.json"},
	{config.FeatureYAML, "/openapi.yaml"},
	{config.FeatureRedoc, "/redoc"},
	{config.FeatureRedoc, "/redoc/openapi.json"},
	{config.FeatureScalar, "/scalar"},
	{config.FeatureSwagger, "/swagger/"},
	{config.FeatureSwagger, "/swagger/openapi.yaml"},
}

func subset(mask int) config.OpenAPI {
	var cfg config.OpenAPI
	if mask&1 != 0 {
		cfg.SpecJSONURL = "/openapi.json"
	}
	if mask&2 != 0 {
		cfg.SpecYAMLURL = "/openapi.yaml"
	}
	if mask&4 != 0 {
		cfg.Redoc = &config.UI{URL: "/redoc", SpecJSONURL: "/redoc/openapi.json"}
	}
	if mask&8 != 0 {
		cfg.Scalar = &config.UI{URL: "/scalar"}
	}
	if mask&16 != 0 {
		cfg.Swagger = &config.SwaggerUI{UI: config.UI{
			URL:         "/swagger",
			SpecJSONURL: "/swagger/openapi.json",
			SpecYAMLURL: "/swagger/openapi.yaml",
		}}
	}
	return cfg
}

func TestBuild_RouteGating(t *testing.T) {
	cache := testCache()

	for mask := 0; mask < 32; mask++ {
		cfg := subset(mask)
		require.NoError(t, cfg.Validate())
		enabled := map[string]bool{}
		for _, f := range cfg.Enabled() {
			enabled[f] = true
		}

		t.Run(fmt.Sprintf("%05b", mask), func(t *testing.T) {
			r := chi.NewRouter()
			mount.Apply(chidocs.Router(r), mount.Build(cfg, cache))

			for _, p := range probes {
				want := http.StatusNotFound
				if enabled[p.feature] {
					want = http.StatusOK
				}
				assert.Equal(t, want, get(r, p.target).Code, "GET %s", p.target)
			}
		})
	}
}

func TestBuild_RedocNestedJSON(t *testing.T) {
	r := chi.NewRouter()
	mount.Apply(chidocs.Router(r), mount.Build(subset(4), testCache()))

	w := get(r, "/redoc/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, spec.ContentTypeJSON, w.Header().Get("Content-Type"))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc, "info")
}

func TestBuild_SwaggerYAMLMatchesJSON(t *testing.T) {
	r := chi.NewRouter()
	mount.Apply(chidocs.Router(r), mount.Build(subset(1|16), testCache()))

	var fromJSON, fromYAML struct {
		Paths map[string]interface{} `json:"paths" yaml:"paths"`
	}
	require.NoError(t, json.Unmarshal(get(r, "/openapi.json").Body.Bytes(), &fromJSON))
	require.NoError(t, yaml.Unmarshal(get(r, "/swagger/openapi.yaml").Body.Bytes(), &fromYAML))
	require.NotEmpty(t, fromJSON.Paths)

	keys := func(m map[string]interface{}) []string {
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}
	assert.ElementsMatch(t, keys(fromJSON.Paths), keys(fromYAML.Paths))
}

func TestBuild_ErrorFunc(t *testing.T) {
	doc := &openapi3.T{OpenAPI: "3.0.3", Info: &openapi3.Info{Title: "x", Version: "1"}, Paths: openapi3.NewPaths()}
	doc.Extensions = map[string]interface{}{"x-bad": func() {}}
	cache := spec.NewCache()
	cache.Set(doc)

	var called int
	onError := func(w http.ResponseWriter, _ *http.Request, status int, _ error) {
		called++
		w.WriteHeader(status)
	}

	r := chi.NewRouter()
	mount.Apply(chidocs.Router(r), mount.Build(subset(1|2|8), cache, mount.WithErrorFunc(onError)))
	for _, target := range []string{"/openapi.json", "/openapi.yaml", "/scalar"} {
		assert.Equal(t, http.StatusInternalServerError, get(r, target).Code, target)
	}
	assert.Equal(t, 3, called)
}
