package openapi

import "github.com/getkin/kin-openapi/openapi3"

// Modifier edits the document after it is built and before it is stored.
type Modifier interface {
	Modify(doc *openapi3.T)
}

// ModifierFunc adapts a function to Modifier.
type ModifierFunc func(doc *openapi3.T)

// Modify calls f(doc).
func (f ModifierFunc) Modify(doc *openapi3.T) { f(doc) }
