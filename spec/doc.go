// Package spec holds the process-wide OpenAPI document and serves it as JSON or YAML.
//
// A Cache is written once at boot and read by every exporter afterwards; the document it
// holds is never rebuilt or replaced.
package spec
