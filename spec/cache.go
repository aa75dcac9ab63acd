package spec

import (
	"sync/atomic"

	"github.com/getkin/kin-openapi/openapi3"
)

// Cache is a write-once cell for a single OpenAPI document.
// The zero value is an empty cache ready for use.
type Cache struct {
	doc atomic.Pointer[openapi3.T]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Set stores doc when the cache is empty and returns the document that ends up stored.
// When another document was stored first, that document is returned and doc is discarded.
func (c *Cache) Set(doc *openapi3.T) *openapi3.T {
	if doc == nil {
		panic("spec: Set called with a nil document")
	}
	c.doc.CompareAndSwap(nil, doc)
	return c.doc.Load()
}

// Get returns the stored document. It panics when nothing has been stored yet: exporters
// must only be reachable after the initializer ran.
func (c *Cache) Get() *openapi3.T {
	doc := c.doc.Load()
	if doc == nil {
		panic("spec: document requested before the openapi initializer stored one")
	}
	return doc
}

// Ready reports whether a document has been stored.
func (c *Cache) Ready() bool {
	return c.doc.Load() != nil
}
