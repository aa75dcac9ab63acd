package openapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

type collected struct {
	method string
	path   string
	op     *Operation
}

// Collector records annotated operations while routes are registered and merges them into the document.
type Collector struct {
	mu         sync.Mutex
	operations []collected
	schemas    openapi3.Schemas
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{schemas: openapi3.Schemas{}}
}

// Document records op for method and path. Router path syntax is normalized on Apply.
func (c *Collector) Document(method, path string, op *Operation) {
	if op == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schemas == nil {
		c.schemas = openapi3.Schemas{}
	}
	c.operations = append(c.operations, collected{method: strings.ToUpper(method), path: path, op: op})
	for name, schema := range op.schemas {
		c.schemas[name] = schema
	}
}

// Route registers h on r and records op for the same method and path.
func (c *Collector) Route(r chi.Router, method, path string, op *Operation, h http.HandlerFunc) {
	r.Method(method, path, h)
	c.Document(method, path, op)
}

// Len reports how many operations were recorded.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.operations)
}

// Apply adds every recorded operation and component schema to doc. Existing schemas win.
func (c *Collector) Apply(doc *openapi3.T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if doc.Paths == nil {
		doc.Paths = openapi3.NewPaths()
	}
	for _, rec := range c.operations {
		path := NormalizePath(rec.path)
		declarePathParams(rec.op.Operation, pathParams(path))
		doc.AddOperation(path, rec.method, rec.op.Operation)
	}

	if len(c.schemas) == 0 {
		return
	}
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	for name, schema := range c.schemas {
		if _, ok := doc.Components.Schemas[name]; !ok {
			doc.Components.Schemas[name] = schema
		}
	}
}

func declarePathParams(op *openapi3.Operation, names []string) {
	existing := make(map[string]struct{})
	for _, p := range op.Parameters {
		if p.Value != nil && p.Value.In == openapi3.ParameterInPath {
			existing[strings.ToLower(p.Value.Name)] = struct{}{}
		}
	}
	for _, name := range names {
		if _, ok := existing[strings.ToLower(name)]; ok {
			continue
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()),
		})
		existing[strings.ToLower(name)] = struct{}{}
	}
}
