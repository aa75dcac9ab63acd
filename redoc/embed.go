package redoc

import (
	"embed"
	"html/template"
)

// assets holds the viewer page. The Redoc bundle itself is loaded from its CDN.
//
//go:embed assets/index.html
var assets embed.FS

var page = template.Must(template.ParseFS(assets, "assets/index.html"))
