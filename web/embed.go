// Package web embeds the dashboard page served by the API server.
//
// The page renders the KPI cards, statement table and revenue pie from the
// /api/v1 endpoints and refreshes them from the /ws snapshot stream.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/dashcore/web"
//	fs := web.StaticFS()  // returns io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static/ is embedded at compile time
		panic("web.StaticFS: " + err.Error())
	}
	return sub
}
