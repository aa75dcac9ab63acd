// Package fiberdocs mounts the specification endpoints and documentation UIs on a Fiber app.
package fiberdocs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/internal/specfile"
	"github.com/webasoo/specmount/mount"
	"github.com/webasoo/specmount/spec"
)

type router struct {
	r fiber.Router
}

// Router adapts r to mount.Router. Subtrees are registered as path and path/*.
func Router(r fiber.Router) mount.Router {
	return router{r: r}
}

func (a router) Get(path string, h http.Handler) {
	a.r.Get(path, adaptor.HTTPHandler(h))
}

func (a router) Subtree(path string, h http.Handler) {
	wrapped := adaptor.HTTPHandler(h)
	a.r.Get(path, wrapped)
	a.r.Get(strings.TrimSuffix(path, "/")+"/*", wrapped)
}

// Register validates cfg and attaches GET handlers for every enabled endpoint.
func Register(r fiber.Router, cfg config.OpenAPI, cache *spec.Cache, opts ...mount.Option) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("fiberdocs: %w", err)
	}
	mount.Apply(Router(r), mount.Build(cfg, cache, opts...))
	return nil
}

// RegisterFile loads an OpenAPI document from disk and mounts it on r.
// An empty path loads openapi.json from the project root.
func RegisterFile(r fiber.Router, cfg config.OpenAPI, path string, opts ...mount.Option) (*openapi3.T, error) {
	doc, err := specfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("fiberdocs: %w", err)
	}
	cache := spec.NewCache()
	cache.Set(doc)
	if err := Register(r, cfg, cache, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}
