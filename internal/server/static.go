package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// serveIndex serves the embedded single-page shell.
func serveIndex(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(content)
}
