// Package web embeds the student-facing front end served under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// StaticFS returns the embedded assets rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}
