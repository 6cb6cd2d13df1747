package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and script served under /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		slog.Error("failed to create static sub-filesystem", "error", err)
		os.Exit(1)
	}
	return sub
}

// TemplatesFS returns the templates file system.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		slog.Error("failed to create templates sub-filesystem", "error", err)
		os.Exit(1)
	}
	return sub
}
