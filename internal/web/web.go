// Package web serves the browser client and the root redirect.
package web

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"mergington-activities/internal/web/static"
)

const IndexPath = "/static/index.html"

// RegisterRoutes mounts GET / and /static/ on mux.
func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
	})
	// FileServer would redirect index.html requests to the directory.
	mux.HandleFunc("GET "+IndexPath, serveIndex)
	mux.Handle("GET /static/", withStaticMime(http.StripPrefix("/static/", http.FileServer(http.FS(static.FS)))))
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	data, err := static.FS.ReadFile("index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(data))
}

func withStaticMime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path := strings.ToLower(r.URL.Path); {
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case strings.HasSuffix(path, ".js"):
			w.Header().Set("Content-Type", "application/javascript")
		}
		next.ServeHTTP(w, r)
	})
}
