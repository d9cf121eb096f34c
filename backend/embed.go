package main

import (
	"embed"
	"io/fs"
)

// The overlay page: index.html, overlay.js and style.css.
//
//go:embed all:frontend
var frontendFiles embed.FS

func frontend() fs.FS {
	sub, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		log.Fatalf("frontend assets: %v", err)
	}
	return sub
}
