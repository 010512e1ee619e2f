// internal/app/features/pwa/routes.go
package pwa

import "github.com/go-chi/chi/v5"

// Mount attaches the worker and manifest directly onto the root router;
// mounting a subrouter would move them off the root scope.
func Mount(r chi.Router, h *Handler) {
	r.Get("/sw.js", h.ServeWorker)
	r.Get("/manifest.json", h.ServeManifest)
}
