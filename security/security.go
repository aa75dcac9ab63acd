// Package security declares the authentication schemes of the host app in the specification document.
package security

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/webasoo/specmount/app"
)

// Token locations.
const (
	Bearer = "bearer"
	Query  = "query"
	Cookie = "cookie"
)

// Scheme names added to components.securitySchemes.
const (
	JWTScheme    = "jwt_token"
	APIKeyScheme = "api_key"
	// APIKeyHeader is the header carrying the api key.
	APIKeyHeader = "apikey"
)

const defaultTokenName = "token"

// Location is where clients send the JWT.
type Location struct {
	From string
	Name string
}

// LocationFrom reads auth.jwt.location. Unknown or empty locations fall back to bearer.
func LocationFrom(cfg *app.Config) Location {
	if cfg == nil {
		return Location{From: Bearer}
	}
	loc := cfg.Auth.JWT.Location
	switch loc.From {
	case Query, Cookie:
		if loc.Name == "" {
			loc.Name = defaultTokenName
		}
		return Location{From: loc.From, Name: loc.Name}
	default:
		return Location{From: Bearer}
	}
}

// Addon adds the JWT and api key security schemes to a document.
type Addon struct {
	Location Location
}

// Modify creates components when absent and registers both schemes.
func (a Addon) Modify(doc *openapi3.T) {
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.SecuritySchemes == nil {
		doc.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}
	doc.Components.SecuritySchemes[JWTScheme] = &openapi3.SecuritySchemeRef{Value: a.jwtScheme()}
	doc.Components.SecuritySchemes[APIKeyScheme] = &openapi3.SecuritySchemeRef{Value: &openapi3.SecurityScheme{
		Type: "apiKey",
		In:   openapi3.ParameterInHeader,
		Name: APIKeyHeader,
	}}
}

func (a Addon) jwtScheme() *openapi3.SecurityScheme {
	switch a.Location.From {
	case Query, Cookie:
		name := a.Location.Name
		if name == "" {
			name = defaultTokenName
		}
		return &openapi3.SecurityScheme{Type: "apiKey", In: a.Location.From, Name: name}
	default:
		return openapi3.NewJWTSecurityScheme()
	}
}
