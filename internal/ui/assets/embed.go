// Package assets embeds the static files served under /ui/static.
package assets

import "embed"

// static/ currently holds only app.css; anything added there is picked
// up by the embed without further wiring.
//
//go:embed static
var staticFS embed.FS

// StaticFS exposes the embedded tree for mounting with fs.Sub.
func StaticFS() embed.FS {
	return staticFS
}
