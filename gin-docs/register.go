// Package gindocs mounts the specification endpoints and documentation UIs on Gin routers.
package gindocs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"

	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/internal/specfile"
	"github.com/webasoo/specmount/mount"
	"github.com/webasoo/specmount/spec"
)

type router struct {
	r gin.IRoutes
}

// Router adapts r to mount.Router. Subtrees are registered as path and path/*any.
func Router(r gin.IRoutes) mount.Router {
	return router{r: r}
}

func (a router) Get(path string, h http.Handler) {
	a.r.GET(path, gin.WrapH(h))
}

func (a router) Subtree(path string, h http.Handler) {
	wrapped := gin.WrapH(h)
	base := strings.TrimSuffix(path, "/")
	if base != "" {
		a.r.GET(base, wrapped)
	}
	a.r.GET(base+"/*any", wrapped)
}

// Register validates cfg and attaches GET handlers for every enabled endpoint.
func Register(r gin.IRoutes, cfg config.OpenAPI, cache *spec.Cache, opts ...mount.Option) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("gindocs: %w", err)
	}
	mount.Apply(Router(r), mount.Build(cfg, cache, opts...))
	return nil
}

// RegisterFile loads an OpenAPI document from disk and mounts it for Gin routers.
func RegisterFile(r gin.IRoutes, cfg config.OpenAPI, path string, opts ...mount.Option) (*openapi3.T, error) {
	doc, err := specfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("gindocs: %w", err)
	}
	cache := spec.NewCache()
	cache.Set(doc)
	if err := Register(r, cfg, cache, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}
