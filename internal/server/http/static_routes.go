package httpserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// registerStaticRoutes mounts the web shell:
// - /web/* -> same files, served under the old prefix
// - /*     -> files under webDir, unknown extension-less paths fall back to index.html
func registerStaticRoutes(r chi.Router, webDir string) {
	if webDir == "" {
		webDir = "."
	}
	files := http.FileServer(http.Dir(webDir))
	index := filepath.Join(webDir, "index.html")

	r.Get("/web", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusMovedPermanently)
	})
	r.Handle("/web/*", http.StripPrefix("/web", files))

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		p := path.Clean("/" + req.URL.Path)
		if p != "/" && path.Ext(p) == "" && !exists(filepath.Join(webDir, filepath.FromSlash(p))) {
			// 前端自己的路由
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, req, index)
			return
		}
		files.ServeHTTP(w, req)
	})
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
