// internal/app/features/pwa/handler.go

// Package pwa serves the browser-side offline assets: the service worker
// script and the web app manifest. Both are embedded so the binary stays
// self-contained, and both live at root paths because a service worker can
// only control paths at or below its own URL.
package pwa

import (
	_ "embed"
	"net/http"
)

//go:embed sw.js
var serviceWorker []byte

//go:embed manifest.json
var manifest []byte

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ServeWorker handles GET /sw.js. No-cache so browsers pick up a new worker
// on the next navigation instead of waiting out the HTTP cache.
func (h *Handler) ServeWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(serviceWorker)
}

// ServeManifest handles GET /manifest.json.
func (h *Handler) ServeManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	_, _ = w.Write(manifest)
}
