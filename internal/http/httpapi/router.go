package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fluxgallery/internal/http/handlers"
	"fluxgallery/internal/infra/geoip"
	"fluxgallery/internal/middleware"
)

type Options struct {
	Logger         zerolog.Logger
	Geo            geoip.CountryResolver
	AllowedOrigins []string
	StoragePath    string
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.Geo),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/predictions", func(r chi.Router) {
		r.Post("/", app.CreatePrediction)
		r.Get("/{id}", app.GetPrediction)
	})

	r.Route("/api/models", func(r chi.Router) {
		r.Get("/", app.ListModels)
		r.Post("/", app.CreateModel)
		r.Get("/{id}", app.GetModel)
		r.Patch("/{id}", app.UpdateModel)
		r.Delete("/{id}", app.DeleteModel)
	})

	r.Route("/api/storage/config", func(r chi.Router) {
		r.Get("/", app.GetStorageConfig)
		r.Post("/", app.SetStorageConfig)
	})

	r.Route("/api/engineering", func(r chi.Router) {
		r.Post("/generate", app.GenerateDiagram)
		r.Get("/diagrams", app.ListDiagrams)
		r.Get("/diagrams/{id}", app.GetDiagram)
		r.Get("/diagrams/{id}/export", app.ExportDiagram)
	})

	// Locally stored assets are served straight from disk.
	if opts.StoragePath != "" {
		fs := stdhttp.StripPrefix("/generated/", stdhttp.FileServer(stdhttp.Dir(opts.StoragePath)))
		r.Get("/generated/*", fs.ServeHTTP)
	}

	return r
}
