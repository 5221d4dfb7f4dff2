package web

import (
	"embed"
	"io/fs"
)

//go:embed build/*
var distFS embed.FS

// GetFileSystem returns the embedded viewer.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(distFS, "build")
}
