package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fluxgallery/internal/modelcfg"
)

type createModelRequest struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Provider    string `json:"provider"`
	Endpoint    string `json:"endpoint"`
	APIKey      string `json:"apiKey"`
	Quality     string `json:"quality"`
	Enabled     *bool  `json:"enabled"`
	Description string `json:"description"`
}

func (a *App) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := a.Models.List()
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: failed to load models")
		a.json(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to load models"})
		return
	}
	sanitized := make([]modelcfg.Model, 0, len(models))
	for _, m := range models {
		sanitized = append(sanitized, modelcfg.Sanitize(m))
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "models": sanitized})
}

func (a *App) CreateModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.json(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Label) == "" || strings.TrimSpace(req.Endpoint) == "" || strings.TrimSpace(req.APIKey) == "" {
		a.json(w, http.StatusBadRequest, map[string]any{"success": false, "error": "label, endpoint, and apiKey are required"})
		return
	}
	if req.Provider != "" && req.Provider != modelcfg.ProviderAzure {
		a.json(w, http.StatusBadRequest, map[string]any{"success": false, "error": "only azure provider is supported"})
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	model, err := a.Models.Create(modelcfg.Model{
		ID:          req.ID,
		Label:       req.Label,
		Provider:    req.Provider,
		Endpoint:    req.Endpoint,
		APIKey:      req.APIKey,
		Quality:     req.Quality,
		Enabled:     enabled,
		Description: req.Description,
	})
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: failed to create model")
		a.json(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to create model"})
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"success": true, "model": modelcfg.Sanitize(*model)})
}

func (a *App) GetModel(w http.ResponseWriter, r *http.Request) {
	model, err := a.Models.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, modelcfg.ErrNotFound) {
			a.json(w, http.StatusNotFound, map[string]any{"success": false, "error": "model not found"})
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to load model")
		a.json(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to load model"})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "model": modelcfg.Sanitize(*model)})
}

func (a *App) UpdateModel(w http.ResponseWriter, r *http.Request) {
	var updates modelcfg.Update
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		a.json(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid payload"})
		return
	}
	model, err := a.Models.Update(chi.URLParam(r, "id"), updates)
	if err != nil {
		if errors.Is(err, modelcfg.ErrNotFound) {
			a.json(w, http.StatusNotFound, map[string]any{"success": false, "error": "model not found"})
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to update model")
		a.json(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to update model"})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "model": modelcfg.Sanitize(*model)})
}

func (a *App) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := a.Models.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, modelcfg.ErrNotFound) {
			a.json(w, http.StatusNotFound, map[string]any{"success": false, "error": "model not found"})
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to delete model")
		a.json(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to delete model"})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}
