package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/prediction"
)

type predictionRequest struct {
	Prompts  string `json:"prompts"`
	Ratio    string `json:"ratio"`
	Model    string `json:"model"`
	IsPublic *bool  `json:"isPublic"`
	User     *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Options struct {
		VariationCount int `json:"variationCount"`
	} `json:"options"`
}

func (a *App) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompts) == "" {
		a.error(w, http.StatusBadRequest, "prompts is required")
		return
	}
	if req.Ratio == "" {
		req.Ratio = "1:1"
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	var requester identity.Identity
	if req.User != nil {
		requester = identity.Normalize(req.User.ID, req.User.Email)
	} else {
		requester = identity.Normalize("", "")
	}

	pred, err := a.Orchestrator.Generate(r.Context(), prediction.Request{
		Prompt:         req.Prompts,
		AspectRatio:    req.Ratio,
		ModelID:        req.Model,
		VariationCount: req.Options.VariationCount,
		IsPublic:       isPublic,
		Requester:      requester,
	})
	if err != nil {
		var reqErr *prediction.RequestError
		if errors.As(err, &reqErr) {
			a.error(w, reqErr.Status, reqErr.Message)
			return
		}
		a.Log.Error().Err(err).Msg("handlers: prediction failed")
		a.error(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	a.json(w, http.StatusCreated, pred)
}

// GetPrediction implements the poll protocol. Without a pid query parameter
// there is nothing to look up yet, so the response is always "processing".
func (a *App) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := r.URL.Query().Get("pid")

	if pid == "" {
		a.json(w, http.StatusOK, map[string]any{
			"id":     id,
			"status": prediction.StatusProcessing,
		})
		return
	}

	record, err := a.Records.FindByCorrelation(r.Context(), pid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusOK, map[string]any{
				"id":     id,
				"dataId": pid,
				"status": prediction.StatusProcessing,
			})
			return
		}
		a.Log.Error().Err(err).Str("pid", pid).Msg("handlers: prediction lookup failed")
		a.error(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}

	status := prediction.StatusProcessing
	if record.AssetURL != "" {
		status = prediction.StatusSucceeded
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":     id,
		"dataId": record.ID,
		"status": status,
		"output": record.AssetURL,
	})
}
