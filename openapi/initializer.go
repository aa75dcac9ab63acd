// Package openapi is the app initializer that builds the specification document once,
// stores it in a spec.Cache and mounts the configured exporters and documentation UIs.
package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/webasoo/specmount/app"
	chidocs "github.com/webasoo/specmount/chi-docs"
	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/mount"
	"github.com/webasoo/specmount/spec"
)

// Name is the initializer name and its section under initializers.
const Name = "openapi"

// ErrNoDocument is returned when the builder produced no document.
var ErrNoDocument = errors.New("openapi: builder returned no document")

// Builder constructs the document from the app context.
type Builder func(actx *app.Context) (*openapi3.T, error)

// Option configures an Initializer.
type Option func(*Initializer)

// WithDocument uses a prebuilt document. The builder is skipped.
func WithDocument(doc *openapi3.T) Option {
	return func(i *Initializer) {
		i.doc = doc
	}
}

// WithCache stores the document in c instead of a private cache.
func WithCache(c *spec.Cache) Option {
	return func(i *Initializer) {
		if c != nil {
			i.cache = c
		}
	}
}

// WithCollector merges the operations recorded by c into the document.
func WithCollector(c *Collector) Option {
	return func(i *Initializer) {
		i.collector = c
	}
}

// WithModifiers runs m in order after collected operations are merged.
func WithModifiers(m ...Modifier) Option {
	return func(i *Initializer) {
		i.modifiers = append(i.modifiers, m...)
	}
}

// Initializer implements app.Initializer.
type Initializer struct {
	build     Builder
	doc       *openapi3.T
	cache     *spec.Cache
	collector *Collector
	modifiers []Modifier
}

var _ app.Initializer = (*Initializer)(nil)

// New returns an initializer that builds the document with build unless WithDocument
// supplies one. The document goes to a private cache unless WithCache is given.
func New(build Builder, opts ...Option) *Initializer {
	i := &Initializer{build: build, cache: spec.NewCache()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name returns "openapi", the config section the initializer reads.
func (i *Initializer) Name() string { return Name }

// Cache returns the cache the document is stored in.
func (i *Initializer) Cache() *spec.Cache { return i.cache }

// BeforeRun does nothing; everything happens in AfterRoutes.
func (i *Initializer) BeforeRun(context.Context, *app.Context) error { return nil }

// AfterRoutes builds and stores the document, then mounts the endpoints enabled in the openapi section.
// Without an openapi section nothing is built or mounted.
func (i *Initializer) AfterRoutes(r chi.Router, actx *app.Context) error {
	node, ok := actx.Config.InitializerNode(Name)
	if !ok {
		actx.Logger.Info("openapi: no configuration, nothing mounted")
		return nil
	}
	cfg, err := config.Decode(node)
	if err != nil {
		return err
	}

	doc, err := i.document(actx)
	if err != nil {
		return err
	}
	if cfg.ValidateDocument {
		if err := doc.Validate(context.Background()); err != nil {
			return fmt.Errorf("openapi: validate document: %w", err)
		}
	}

	if stored := i.cache.Set(doc); stored != doc {
		actx.Logger.Warn("openapi: document already initialized, keeping the first one")
	}

	routes := mount.Build(cfg, i.cache, mount.WithErrorFunc(app.RenderError))
	mount.Apply(chidocs.Router(r), routes)
	for _, route := range routes {
		actx.Logger.Info("openapi: mounted", "feature", route.Feature, "path", route.Path)
	}
	return nil
}

func (i *Initializer) document(actx *app.Context) (*openapi3.T, error) {
	doc := i.doc
	if doc == nil {
		if i.build == nil {
			return nil, ErrNoDocument
		}
		var err error
		if doc, err = i.build(actx); err != nil {
			return nil, fmt.Errorf("openapi: build document: %w", err)
		}
		if doc == nil {
			return nil, ErrNoDocument
		}
	}

	if i.collector != nil {
		i.collector.Apply(doc)
	}
	for _, m := range i.modifiers {
		m.Modify(doc)
	}
	return doc, nil
}
