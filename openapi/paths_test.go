package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"users/:id":            "/users/{id}",
		"/users/:id/posts/:":   "/users/{id}/posts/{param}",
		"/files/*":             "/files/{wildcard}",
		"/files/*path":         "/files/{path}",
		"/albums/{id:[0-9]+}":  "/albums/{id}",
		"/api/album/get_album": "/api/album/get_album",
		"/api/album/{id}/ ":    "/api/album/{id}/",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), "NormalizePath(%q)", in)
	}
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"id", "track"}, pathParams("/albums/{id}/tracks/{track}"))
	assert.Equal(t, []string{"id"}, pathParams("/a/{id}/b/{ID}"))
	assert.Empty(t, pathParams("/api/album/get_album"))
}
