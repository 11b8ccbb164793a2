package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fluxgallery/internal/storage"
)

func (a *App) GetStorageConfig(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"provider":  a.Storage.Provider(),
		"available": a.Storage.Available(),
	})
}

func (a *App) SetStorageConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	provider, err := storage.ParseProvider(req.Provider)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid storage provider, must be 'local' or 'r2'")
		return
	}
	if err := a.Storage.SetProvider(provider); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"provider": a.Storage.Provider(),
		"message":  fmt.Sprintf("storage provider switched to %s", provider),
	})
}
