package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticFileServer serves files from dir with long-lived cache headers.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			http.ServeFile(w, r, path)
			return
		}

		http.NotFound(w, r)
	})
}
