package spec

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func albumDoc() *openapi3.T {
	doc := newDoc("Album API")
	doc.Info.Description = "Test OpenAPI spec"
	responses := &openapi3.Responses{}
	responses.Set("200", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Album found")})
	doc.AddOperation("/api/album/get_album", http.MethodGet, &openapi3.Operation{
		Tags:      []string{"album"},
		Summary:   "Get album",
		Responses: responses,
	})
	doc.AddOperation("/api/album/{id}", http.MethodDelete, &openapi3.Operation{
		Summary:   "Delete album",
		Responses: responses,
	})
	return doc
}

func serve(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi", nil))
	return w
}

func pathKeys(t *testing.T, doc map[string]interface{}) []string {
	t.Helper()
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok, "paths missing from %v", doc)
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestJSONHandler(t *testing.T) {
	cache := NewCache()
	cache.Set(albumDoc())

	w := serve(t, JSONHandler(cache))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentTypeJSON, w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	info, ok := body["info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Album API", info["title"])
	assert.Equal(t, []string{"/api/album/get_album", "/api/album/{id}"}, pathKeys(t, body))
}

func TestYAMLHandler_MatchesJSONPaths(t *testing.T) {
	cache := NewCache()
	cache.Set(albumDoc())

	jw := serve(t, JSONHandler(cache))
	yw := serve(t, YAMLHandler(cache))
	require.Equal(t, http.StatusOK, yw.Code)
	assert.Equal(t, ContentTypeYAML, yw.Header().Get("Content-Type"))

	var fromJSON, fromYAML map[string]interface{}
	require.NoError(t, json.Unmarshal(jw.Body.Bytes(), &fromJSON))
	require.NoError(t, yaml.Unmarshal(yw.Body.Bytes(), &fromYAML))
	assert.Equal(t, pathKeys(t, fromJSON), pathKeys(t, fromYAML))

	// Status codes are map keys that look like integers and must stay strings.
	get := fromYAML["paths"].(map[string]interface{})["/api/album/get_album"].(map[string]interface{})["get"].(map[string]interface{})
	_, ok := get["responses"].(map[string]interface{})["200"]
	assert.True(t, ok, "expected string key 200 in %v", get["responses"])
}

func TestMarshal_Deterministic(t *testing.T) {
	doc := albumDoc()

	first, err := MarshalJSON(doc)
	require.NoError(t, err)
	second, err := MarshalJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	firstYAML, err := MarshalYAML(doc)
	require.NoError(t, err)
	secondYAML, err := MarshalYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, firstYAML, secondYAML)
	assert.NotContains(t, string(firstYAML), "{\"", "flow style leaked into yaml output")
}

func TestHandlers_SerializationFailure(t *testing.T) {
	doc := albumDoc()
	doc.Extensions = map[string]interface{}{"x-broken": math.Inf(1)}
	cache := NewCache()
	cache.Set(doc)

	var gotStatus int
	var gotErr error
	onError := func(w http.ResponseWriter, _ *http.Request, status int, err error) {
		gotStatus, gotErr = status, err
		w.WriteHeader(status)
	}

	w := serve(t, YAMLHandler(cache, WithErrorFunc(onError)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Error(t, gotErr)
	assert.Empty(t, w.Body.String())

	w = serve(t, JSONHandler(cache))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "spec: marshal json")
}

func TestHandlers_UninitializedCachePanics(t *testing.T) {
	cache := NewCache()
	assert.Panics(t, func() { serve(t, JSONHandler(cache)) })
	assert.Panics(t, func() { serve(t, YAMLHandler(cache)) })
}

func TestWithErrorFunc_IgnoresNil(t *testing.T) {
	o := newHandlerOptions([]HandlerOption{WithErrorFunc(nil)})
	w := httptest.NewRecorder()
	o.onError(w, nil, http.StatusInternalServerError, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "spec: boom")
}

func TestMarshalYAML_AwkwardStrings(t *testing.T) {
	doc := albumDoc()
	doc.Info.Description = "rating\x7fscale \u0085 end"
	doc.Components = &openapi3.Components{Schemas: openapi3.Schemas{
		"Merge": openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
			WithProperty("<<", openapi3.NewStringSchema()).
			WithProperty("null", openapi3.NewBoolSchema())),
	}}

	data, err := MarshalYAML(doc)
	require.NoError(t, err)

	var decoded struct {
		Info struct {
			Description string `yaml:"description"`
		} `yaml:"info"`
		Components struct {
			Schemas map[string]struct {
				Properties map[string]interface{} `yaml:"properties"`
			} `yaml:"schemas"`
		} `yaml:"components"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Info.Description, decoded.Info.Description)

	props := decoded.Components.Schemas["Merge"].Properties
	assert.Contains(t, props, "<<")
	assert.Contains(t, props, "null")
}

func TestYAMLHandler_ControlCharacters(t *testing.T) {
	doc := albumDoc()
	doc.Info.Title = "Albums\x7f"
	cache := NewCache()
	cache.Set(doc)

	w := serve(t, YAMLHandler(cache))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `\x7F`)
}
