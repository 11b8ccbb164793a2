package handlers

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/modelcfg"
	"fluxgallery/internal/prediction"
	"fluxgallery/internal/providers/azure"
	"fluxgallery/internal/ratelimit"
	"fluxgallery/internal/storage"
)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	fn    func(p azure.Params) (*azure.Response, error)
}

func (s *stubProvider) Generate(_ context.Context, p azure.Params) (*azure.Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(p)
}

type memGenerations struct {
	mu      sync.Mutex
	records []*domain.Generation
}

func (r *memGenerations) Insert(_ context.Context, g *domain.Generation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, g)
	return nil
}

func (r *memGenerations) FindByCorrelation(_ context.Context, id string) (*domain.Generation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.records {
		if g.ID == id || g.PredictionID == id {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memUsers struct {
	byEmail map[string]*domain.User
	deltas  []int
	err     error
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) AdjustCredits(_ context.Context, userID string, delta int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.deltas = append(r.deltas, delta)
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.Credits += delta
			return u.Credits, nil
		}
	}
	return 0, domain.ErrNotFound
}

type memDiagrams struct {
	records []*domain.Diagram
	err     error
}

func (r *memDiagrams) Insert(_ context.Context, d *domain.Diagram) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, d)
	return nil
}

func (r *memDiagrams) GetByID(_ context.Context, id string) (*domain.Diagram, error) {
	for _, d := range r.records {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memDiagrams) ListByUser(_ context.Context, userID string) ([]domain.Diagram, error) {
	var out []domain.Diagram
	for _, d := range r.records {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type testApp struct {
	app      *App
	router   chi.Router
	provider *stubProvider
	records  *memGenerations
	users    *memUsers
	diagrams *memDiagrams
	models   *modelcfg.Store
	storage  *storage.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zerolog.New(io.Discard)

	models, err := modelcfg.NewStore(filepath.Join(t.TempDir(), "models.json"))
	if err != nil {
		t.Fatalf("model store: %v", err)
	}
	storageDir := t.TempDir()
	local, err := storage.NewFileStore(storageDir, "http://localhost:8080")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	store := storage.NewService(storage.ProviderLocal, local, nil, logger)

	provider := &stubProvider{fn: func(azure.Params) (*azure.Response, error) {
		return &azure.Response{Data: []azure.ImageData{{URL: "https://img.example.com/default.jpg"}}}, nil
	}}
	records := &memGenerations{}
	users := &memUsers{byEmail: map[string]*domain.User{}}
	diagrams := &memDiagrams{}
	allowlist := identity.NewAllowlist([]string{"vip@example.com"})
	ingestor := prediction.NewIngestor(store, logger)

	app := &App{
		Log:            logger,
		Orchestrator:   prediction.NewOrchestrator(models, ratelimit.NewMemoryLimiter(100, 0), provider, ingestor, records, allowlist, logger),
		Records:        records,
		Users:          users,
		Diagrams:       diagrams,
		Models:         models,
		Storage:        store,
		Ingestor:       ingestor,
		Provider:       provider,
		Allowlist:      allowlist,
		DiagramCredits: 3,
		StoragePath:    storageDir,
	}

	r := chi.NewRouter()
	r.Post("/api/predictions", app.CreatePrediction)
	r.Get("/api/predictions/{id}", app.GetPrediction)
	r.Get("/api/models", app.ListModels)
	r.Post("/api/models", app.CreateModel)
	r.Get("/api/models/{id}", app.GetModel)
	r.Patch("/api/models/{id}", app.UpdateModel)
	r.Delete("/api/models/{id}", app.DeleteModel)
	r.Get("/api/storage/config", app.GetStorageConfig)
	r.Post("/api/storage/config", app.SetStorageConfig)
	r.Post("/api/engineering/generate", app.GenerateDiagram)
	r.Get("/api/engineering/diagrams", app.ListDiagrams)
	r.Get("/api/engineering/diagrams/{id}", app.GetDiagram)
	r.Get("/api/engineering/diagrams/{id}/export", app.ExportDiagram)
	r.Get("/healthz", app.Health)

	return &testApp{
		app:      app,
		router:   r,
		provider: provider,
		records:  records,
		users:    users,
		diagrams: diagrams,
		models:   models,
		storage:  store,
	}
}

func (ta *testApp) seedModel(t *testing.T) *modelcfg.Model {
	t.Helper()
	model, err := ta.models.Create(modelcfg.Model{
		ID:       "flux-pro",
		Label:    "FLUX Pro",
		Endpoint: "https://azure.example.com/images",
		APIKey:   "secret-key-123",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("seed model: %v", err)
	}
	return model
}
