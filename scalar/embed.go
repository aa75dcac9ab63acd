package scalar

import (
	"embed"
	"html/template"
)

// assets contains the API reference page; @scalar/api-reference is pulled from jsDelivr.
//
//go:embed assets/index.html
var assets embed.FS

var page = template.Must(template.ParseFS(assets, "assets/index.html"))
