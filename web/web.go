// Package web holds the console's embedded templates and static assets.
package web

import "embed"

// FS contains templates/layout, templates/pages and static.
//
//go:embed templates static
var FS embed.FS
