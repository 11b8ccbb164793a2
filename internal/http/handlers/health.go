package handlers

import (
	"net/http"
)

// Health reports liveness plus the storage backend currently serving
// uploads, so a probe can tell a local-only instance from one writing to r2.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": string(a.Storage.Provider()),
	})
}
