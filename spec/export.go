package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
)

// ErrorFunc writes an error response for a request that could not be served.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// HandlerOption configures JSONHandler and YAMLHandler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	onError ErrorFunc
}

// WithErrorFunc replaces the default plain-text error response.
func WithErrorFunc(fn ErrorFunc) HandlerOption {
	return func(o *handlerOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

func newHandlerOptions(opts []HandlerOption) handlerOptions {
	o := handlerOptions{onError: plainError}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func plainError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, "spec: "+err.Error(), status)
}

// MarshalJSON renders doc as compact JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("spec: marshal json: %w", err)
	}
	return data, nil
}

// MarshalYAML renders doc as block-style YAML with the same key order as MarshalJSON.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	data, err := MarshalJSON(doc)
	if err != nil {
		return nil, err
	}

	// Indented JSON keeps a space after every colon, which YAML requires in flow mappings.
	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "  "); err != nil {
		return nil, fmt.Errorf("spec: convert to yaml: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(yamlSafe(indented.Bytes()), &root); err != nil {
		return nil, fmt.Errorf("spec: convert to yaml: %w", err)
	}
	blockStyle(&root)

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("spec: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("spec: encode yaml: %w", err)
	}
	return out.Bytes(), nil
}

// blockStyle drops the flow style inherited from JSON. Quoted scalars are pinned to !!str
// so the encoder re-quotes values such as "200" or "true".
func blockStyle(n *yaml.Node) {
	quoted := n.Kind == yaml.ScalarNode && n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0
	n.Style = 0
	if quoted {
		n.Tag = "!!str"
		// Written plain, "<<" reads back as a merge key.
		if n.Value == "<<" {
			n.Style = yaml.DoubleQuotedStyle
		}
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// yamlSafe escapes the runes the YAML reader rejects. In JSON text they only occur inside strings.
func yamlSafe(data []byte) []byte {
	if !bytes.ContainsFunc(data, yamlRejects) {
		return data
	}
	var b bytes.Buffer
	b.Grow(len(data) + 16)
	for _, r := range string(data) {
		if yamlRejects(r) {
			fmt.Fprintf(&b, `\u%04x`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.Bytes()
}

func yamlRejects(r rune) bool {
	return (r >= 0x7F && r <= 0x9F) || r == 0xFFFE || r == 0xFFFF
}

// JSONHandler serves the cached document as application/json.
func JSONHandler(c *Cache, opts ...HandlerOption) http.Handler {
	return exporter(c, ContentTypeJSON, MarshalJSON, newHandlerOptions(opts))
}

// YAMLHandler serves the cached document as application/yaml.
func YAMLHandler(c *Cache, opts ...HandlerOption) http.Handler {
	return exporter(c, ContentTypeYAML, MarshalYAML, newHandlerOptions(opts))
}

func exporter(c *Cache, contentType string, marshal func(*openapi3.T) ([]byte, error), o handlerOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := marshal(c.Get())
		if err != nil {
			o.onError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
