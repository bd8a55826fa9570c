// Package payassure provides the portal's embedded templates and static assets.
package payassure

import "embed"

// In dev mode templates and assets are read from disk for hot reloading;
// otherwise they are served from these embedded filesystems.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
