package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/modelcfg"
	"fluxgallery/internal/prediction"
	"fluxgallery/internal/storage"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Log            zerolog.Logger
	Orchestrator   *prediction.Orchestrator
	Records        domain.GenerationRepository
	Users          domain.UserRepository
	Diagrams       domain.DiagramRepository
	Models         *modelcfg.Store
	Storage        *storage.Service
	Ingestor       *prediction.Ingestor
	Provider       prediction.ProviderClient
	Allowlist      *identity.Allowlist
	DiagramCredits int
	StoragePath    string
	HTTPClient     *http.Client
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

// assetBytes resolves the raw bytes behind a generated-asset URL. Local
// URLs are read straight from disk; anything else is fetched over HTTP.
func (a *App) assetBytes(ctx context.Context, rawURL string) []byte {
	const marker = "/generated/"
	if idx := strings.Index(rawURL, marker); idx >= 0 && a.StoragePath != "" {
		key := filepath.Clean(rawURL[idx+len(marker):])
		if !strings.HasPrefix(key, "..") {
			if data, err := os.ReadFile(filepath.Join(a.StoragePath, key)); err == nil {
				return data
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	return data
}
