package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fluxgallery/internal/diagram"
	"fluxgallery/internal/domain"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/providers/azure"
	"fluxgallery/pkg/zip"
)

type generateDiagramRequest struct {
	Config diagram.Config `json:"config"`
	User   struct {
		Email string `json:"email"`
	} `json:"user"`
}

type diagramResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Config      json.RawMessage `json:"config,omitempty"`
	ImageURL    string          `json:"imageUrl"`
	Tags        string          `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toDiagramResponse(d *domain.Diagram) diagramResponse {
	return diagramResponse{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		Category:    d.Category,
		Description: d.Description,
		Config:      json.RawMessage(d.Config),
		ImageURL:    d.ImageURL,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
	}
}

// GenerateDiagram is the credit-gated engineering variant of the pipeline.
// Credits are debited before the provider call and refunded when anything
// after the debit fails.
func (a *App) GenerateDiagram(w http.ResponseWriter, r *http.Request) {
	var req generateDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.User.Email == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := req.Config.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid configuration")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), req.User.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "user account not found")
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to load user")
		a.error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	unlimited := a.Allowlist.Contains(req.User.Email)
	if !unlimited && user.Credits < a.DiagramCredits {
		a.json(w, http.StatusPaymentRequired, map[string]any{
			"error":     "insufficient credits",
			"required":  a.DiagramCredits,
			"available": user.Credits,
		})
		return
	}

	if !unlimited {
		if _, err := a.Users.AdjustCredits(r.Context(), user.ID, -a.DiagramCredits); err != nil {
			a.Log.Error().Err(err).Msg("handlers: failed to debit credits")
			a.error(w, http.StatusInternalServerError, "failed to debit credits")
			return
		}
	}

	record, err := a.generateDiagram(r.Context(), req.Config, user)
	if err != nil {
		if !unlimited {
			if _, refundErr := a.Users.AdjustCredits(r.Context(), user.ID, a.DiagramCredits); refundErr != nil {
				a.Log.Error().Err(refundErr).Str("user_id", user.ID).Msg("handlers: credit refund failed")
			}
		}
		a.Log.Error().Err(err).Msg("handlers: diagram generation failed")
		a.error(w, http.StatusInternalServerError, "diagram generation failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"id": record.ID, "imageUrl": record.ImageURL})
}

// generateDiagram runs the provider call, ingest and persistence. Any error
// here triggers the caller's refund.
func (a *App) generateDiagram(ctx context.Context, cfg diagram.Config, user *domain.User) (*domain.Diagram, error) {
	model, err := a.Models.FirstEnabled()
	if err != nil {
		return nil, fmt.Errorf("handlers: no enabled model: %w", err)
	}

	resp, err := a.Provider.Generate(ctx, azure.Params{
		Endpoint: model.Endpoint,
		APIKey:   model.APIKey,
		Prompt:   diagram.BuildPrompt(cfg),
		Ratio:    "3:2",
		Quality:  "hd",
	})
	if err != nil {
		return nil, err
	}

	imageURL, err := a.Ingestor.Ingest(ctx, resp.First(), identity.Identity{ID: user.ID, Email: user.Email}, model.ID)
	if err != nil {
		return nil, err
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	record := &domain.Diagram{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        cfg.Name(),
		Type:        cfg.Type,
		Category:    cfg.Category,
		Description: cfg.Description,
		Config:      configJSON,
		ImageURL:    imageURL,
		Tags:        cfg.Tags(),
	}
	if err := a.Diagrams.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (a *App) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		a.error(w, http.StatusBadRequest, "user is required")
		return
	}
	diagrams, err := a.Diagrams.ListByUser(r.Context(), userID)
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: failed to list diagrams")
		a.error(w, http.StatusInternalServerError, "failed to list diagrams")
		return
	}
	items := make([]diagramResponse, 0, len(diagrams))
	for i := range diagrams {
		items = append(items, toDiagramResponse(&diagrams[i]))
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) GetDiagram(w http.ResponseWriter, r *http.Request) {
	record, err := a.Diagrams.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "diagram not found")
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to load diagram")
		a.error(w, http.StatusInternalServerError, "failed to load diagram")
		return
	}
	a.json(w, http.StatusOK, toDiagramResponse(record))
}

// ExportDiagram bundles the diagram image and its configuration into a zip
// archive for download.
func (a *App) ExportDiagram(w http.ResponseWriter, r *http.Request) {
	record, err := a.Diagrams.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "diagram not found")
			return
		}
		a.Log.Error().Err(err).Msg("handlers: failed to load diagram")
		a.error(w, http.StatusInternalServerError, "failed to load diagram")
		return
	}

	assets := []zip.Asset{
		{Filename: record.ID, MIME: "image/jpeg", Data: a.assetBytes(r.Context(), record.ImageURL)},
		{Filename: "config.json", Data: record.Config},
	}
	archive := zip.ArchiveAssets(assets)
	if len(archive) == 0 {
		a.error(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=diagram-%s.zip", record.ID))
	_, _ = w.Write(archive)
}
