// Package web serves the JSON search API and a small search page over HTTP.
// Binds to localhost only.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
