// Package config describes which specification endpoints and documentation UIs are mounted.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/webasoo/specmount/internal/urlpath"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid openapi configuration")

// Feature names, in mount order.
const (
	FeatureJSON    = "spec.json"
	FeatureYAML    = "spec.yaml"
	FeatureRedoc   = "redoc"
	FeatureScalar  = "scalar"
	FeatureSwagger = "swagger"
)

var docExpansions = map[string]bool{"": true, "list": true, "full": true, "none": true}

// UI configures one documentation viewer. A nil *UI disables it.
type UI struct {
	URL         string `yaml:"url"`
	SpecJSONURL string `yaml:"spec_json_url"`
	SpecYAMLURL string `yaml:"spec_yaml_url"`
	Title       string `yaml:"title"`
}

// SwaggerUI adds the Swagger UI display settings.
type SwaggerUI struct {
	UI           `yaml:",inline"`
	DeepLinking  bool   `yaml:"deep_linking"`
	DocExpansion string `yaml:"doc_expansion"`
	DomID        string `yaml:"dom_id"`
}

// OpenAPI is the initializers.openapi section.
type OpenAPI struct {
	SpecJSONURL      string     `yaml:"spec_json_url"`
	SpecYAMLURL      string     `yaml:"spec_yaml_url"`
	Redoc            *UI        `yaml:"redoc"`
	Scalar           *UI        `yaml:"scalar"`
	Swagger          *SwaggerUI `yaml:"swagger"`
	ValidateDocument bool       `yaml:"validate"`
}

// Decode reads and validates an openapi section.
func Decode(node *yaml.Node) (OpenAPI, error) {
	var cfg OpenAPI
	if node == nil || node.Kind == 0 {
		return cfg, nil
	}
	if err := node.Decode(&cfg); err != nil {
		return OpenAPI{}, fmt.Errorf("config: decode openapi section: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return OpenAPI{}, err
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c OpenAPI) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	checkURL := func(field, value string) {
		if value != "" && !strings.HasPrefix(value, "/") {
			add("%s %q must start with /", field, value)
		}
	}
	checkURL("spec_json_url", c.SpecJSONURL)
	checkURL("spec_yaml_url", c.SpecYAMLURL)
	if c.SpecJSONURL != "" && c.SpecJSONURL == c.SpecYAMLURL {
		add("spec_json_url and spec_yaml_url are both %q", c.SpecJSONURL)
	}

	checkUI := func(name string, ui *UI) {
		if ui == nil {
			return
		}
		if ui.URL == "" {
			add("%s.url is required", name)
		}
		checkURL(name+".url", ui.URL)
		checkURL(name+".spec_json_url", ui.SpecJSONURL)
		checkURL(name+".spec_yaml_url", ui.SpecYAMLURL)

		seen := map[string]string{}
		for _, f := range []struct{ field, value string }{
			{"url", ui.URL},
			{"spec_json_url", ui.SpecJSONURL},
			{"spec_yaml_url", ui.SpecYAMLURL},
		} {
			if f.value == "" {
				continue
			}
			if prev, ok := seen[f.value]; ok {
				add("%s.%s and %s.%s are both %q", name, prev, name, f.field, f.value)
				continue
			}
			seen[f.value] = f.field
		}
	}
	checkUI(FeatureRedoc, c.Redoc)
	checkUI(FeatureScalar, c.Scalar)
	if c.Swagger != nil {
		checkUI(FeatureSwagger, &c.Swagger.UI)
		if c.Swagger.SpecJSONURL == "" {
			add("swagger.spec_json_url is required")
		}
		if !docExpansions[c.Swagger.DocExpansion] {
			add("swagger.doc_expansion %q must be one of list, full, none", c.Swagger.DocExpansion)
		}
	}

	checkOverlap(c, add)
	return errors.Join(errs...)
}

type mounted struct {
	name string
	ui   *UI
}

func (c OpenAPI) viewers() []mounted {
	var out []mounted
	if c.Redoc != nil {
		out = append(out, mounted{FeatureRedoc, c.Redoc})
	}
	if c.Scalar != nil {
		out = append(out, mounted{FeatureScalar, c.Scalar})
	}
	if c.Swagger != nil {
		out = append(out, mounted{FeatureSwagger, &c.Swagger.UI})
	}
	return out
}

// checkOverlap rejects viewer paths that contain one another and spec URLs that fall
// under a viewer path without being that viewer's own spec URL of the same format.
func checkOverlap(c OpenAPI, add func(string, ...interface{})) {
	viewers := c.viewers()
	for i, a := range viewers {
		for _, b := range viewers[i+1:] {
			if a.ui.URL == "" || b.ui.URL == "" {
				continue
			}
			_, under := urlpath.Relative(a.ui.URL, b.ui.URL)
			_, over := urlpath.Relative(b.ui.URL, a.ui.URL)
			if under || over {
				add("%s.url %q and %s.url %q overlap", a.name, a.ui.URL, b.name, b.ui.URL)
			}
		}
	}

	type specURL struct {
		block, field, value string
		yaml                bool
	}
	urls := []specURL{
		{"", "spec_json_url", c.SpecJSONURL, false},
		{"", "spec_yaml_url", c.SpecYAMLURL, true},
	}
	for _, v := range viewers {
		urls = append(urls,
			specURL{v.name, v.name + ".spec_json_url", v.ui.SpecJSONURL, false},
			specURL{v.name, v.name + ".spec_yaml_url", v.ui.SpecYAMLURL, true},
		)
	}

	formats := map[string]specURL{}
	for _, u := range urls {
		if u.value == "" {
			continue
		}
		if prev, ok := formats[u.value]; ok && prev.yaml != u.yaml && prev.block != u.block {
			add("%s and %s are both %q", prev.field, u.field, u.value)
		} else if !ok {
			formats[u.value] = u
		}
		for _, v := range viewers {
			if v.ui.URL == "" {
				continue
			}
			if _, ok := urlpath.Relative(v.ui.URL, u.value); !ok {
				continue
			}
			own, field := v.ui.SpecJSONURL, "spec_json_url"
			if u.yaml {
				own, field = v.ui.SpecYAMLURL, "spec_yaml_url"
			}
			if own != u.value {
				add("%s %q is under %s.url %q and must equal %s.%s", u.field, u.value, v.name, v.ui.URL, v.name, field)
			}
		}
	}
}

// Enabled lists the features this configuration mounts.
func (c OpenAPI) Enabled() []string {
	var out []string
	if c.SpecJSONURL != "" {
		out = append(out, FeatureJSON)
	}
	if c.SpecYAMLURL != "" {
		out = append(out, FeatureYAML)
	}
	if c.Redoc != nil {
		out = append(out, FeatureRedoc)
	}
	if c.Scalar != nil {
		out = append(out, FeatureScalar)
	}
	if c.Swagger != nil {
		out = append(out, FeatureSwagger)
	}
	return out
}

// Default enables every endpoint at its conventional path.
func Default() OpenAPI {
	return OpenAPI{
		SpecJSONURL: "/openapi.json",
		SpecYAMLURL: "/openapi.yaml",
		Redoc:       &UI{URL: "/redoc"},
		Scalar:      &UI{URL: "/scalar"},
		Swagger: &SwaggerUI{
			UI:          UI{URL: "/swagger", SpecJSONURL: "/swagger/openapi.json"},
			DeepLinking: true,
		},
	}
}
