package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed web/*
var content embed.FS

const indexFile = "index.html"

// Handler serves the browser panel.
//
// When dir names an existing directory the assets are read from disk, so the
// page can be edited without rebuilding. Otherwise the embedded copy is used.
// Paths that do not name a file get index.html.
func Handler(dir string) http.Handler {
	return &handler{fsys: assets(dir)}
}

func assets(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	web, err := fs.Sub(content, "web")
	if err != nil {
		panic(fmt.Sprintf("panel: embedded assets missing: %v", err))
	}
	return web
}

type handler struct {
	fsys fs.FS
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if !h.isFile(name) {
		name = indexFile
	}
	http.ServeFileFS(w, r, h.fsys, name)
}

func (h *handler) isFile(name string) bool {
	if name == "" {
		return false
	}
	info, err := fs.Stat(h.fsys, name)
	return err == nil && !info.IsDir()
}
