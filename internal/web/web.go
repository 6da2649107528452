// Package web serves the embedded control UI.
//
// The single-page interface is embedded into the binary with go:embed so
// the service has no runtime dependency on external files. It drives the
// JSON API and follows live status over the WebSocket.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed static/*
var content embed.FS

// Handler returns an http.Handler serving the embedded UI. The root path
// serves index.html.
func Handler() http.Handler {
	staticFS, err := fs.Sub(content, "static")
	if err != nil {
		panic(fmt.Sprintf("web: failed to load embedded assets: %v", err))
	}

	fileServer := http.FileServer(http.FS(staticFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		fileServer.ServeHTTP(w, r)
	})
}
