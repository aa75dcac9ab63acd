package openapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// Operation is an annotated handler operation together with the body schemas it references.
type Operation struct {
	*openapi3.Operation
	schemas openapi3.Schemas
}

// OperationOption annotates an Operation.
type OperationOption func(*Operation) error

// Describe builds an operation. Without a Returns option it documents a bare 200 response.
func Describe(summary string, opts ...OperationOption) (*Operation, error) {
	op := &Operation{
		Operation: &openapi3.Operation{Summary: summary, Responses: &openapi3.Responses{}},
		schemas:   openapi3.Schemas{},
	}
	for _, opt := range opts {
		if err := opt(op); err != nil {
			return nil, fmt.Errorf("openapi: describe %q: %w", summary, err)
		}
	}
	if op.Responses.Len() == 0 {
		op.Responses.Set(strconv.Itoa(http.StatusOK), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(http.StatusText(http.StatusOK)),
		})
	}
	return op, nil
}

// MustDescribe is Describe for package-level annotations; it panics on error.
func MustDescribe(summary string, opts ...OperationOption) *Operation {
	op, err := Describe(summary, opts...)
	if err != nil {
		panic(err)
	}
	return op
}

// Tags appends tags to the operation.
func Tags(tags ...string) OperationOption {
	return func(op *Operation) error {
		op.Tags = append(op.Tags, tags...)
		return nil
	}
}

// OperationID sets the operationId.
func OperationID(id string) OperationOption {
	return func(op *Operation) error {
		op.OperationID = id
		return nil
	}
}

// Description sets the long description shown under the summary.
func Description(text string) OperationOption {
	return func(op *Operation) error {
		op.Description = text
		return nil
	}
}

// Returns documents a response. A nil body documents a response without content.
func Returns(status int, description string, body interface{}) OperationOption {
	return func(op *Operation) error {
		resp := openapi3.NewResponse().WithDescription(description)
		if body != nil {
			ref, err := op.schemaRef(body)
			if err != nil {
				return err
			}
			resp.WithContent(openapi3.NewContentWithJSONSchemaRef(ref))
		}
		op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: resp})
		return nil
	}
}

// Accepts documents a required JSON request body.
func Accepts(body interface{}) OperationOption {
	return func(op *Operation) error {
		ref, err := op.schemaRef(body)
		if err != nil {
			return err
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
		}
		return nil
	}
}

// Secured requires one of the named security schemes.
func Secured(schemes ...string) OperationOption {
	return func(op *Operation) error {
		reqs := openapi3.NewSecurityRequirements()
		for _, scheme := range schemes {
			reqs.With(openapi3.NewSecurityRequirement().Authenticate(scheme))
		}
		op.Security = reqs
		return nil
	}
}

// schemaRef generates the schema for v. Named struct types become component schemas
// referenced by name; everything else is inlined.
func (op *Operation) schemaRef(v interface{}) (*openapi3.SchemaRef, error) {
	ref, err := openapi3gen.NewSchemaRefForValue(v, openapi3.Schemas{})
	if err != nil {
		return nil, fmt.Errorf("generate schema for %T: %w", v, err)
	}
	if ref == nil {
		return nil, fmt.Errorf("no schema for %T", v)
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return ref, nil
	}
	op.schemas[t.Name()] = ref
	return openapi3.NewSchemaRef("#/components/schemas/"+t.Name(), ref.Value), nil
}
