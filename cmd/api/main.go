package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fluxgallery/internal/adapter/repo"
	"fluxgallery/internal/http/handlers"
	httpapi "fluxgallery/internal/http/httpapi"
	"fluxgallery/internal/identity"
	"fluxgallery/internal/infra"
	"fluxgallery/internal/infra/geoip"
	"fluxgallery/internal/modelcfg"
	"fluxgallery/internal/prediction"
	"fluxgallery/internal/providers/azure"
	"fluxgallery/internal/ratelimit"
	"fluxgallery/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country tagging disabled")
	}

	models, err := modelcfg.NewStore(cfg.ModelsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open models config")
	}

	local, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare local storage")
	}
	remote, err := storage.NewS3Store(ctx, storage.S3Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		ForcePathStyle:  cfg.S3PathStyle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure bucket storage")
	}
	provider, err := storage.ParseProvider(cfg.StorageProvider)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid storage provider")
	}
	var remoteUploader storage.Uploader
	if remote != nil {
		remoteUploader = remote
	}
	store := storage.NewService(provider, local, remoteUploader, logger)

	limiter := buildLimiter(cfg, logger)
	allowlist := identity.NewAllowlist(cfg.UnlimitedAccounts)

	azureClient := azure.NewClient(azure.Options{Logger: &logger})
	ingestor := prediction.NewIngestor(store, logger)
	records := repo.NewGenerationRepository(dbpool)
	users := repo.NewUserRepository(dbpool)
	diagrams := repo.NewDiagramRepository(dbpool)

	orchestrator := prediction.NewOrchestrator(models, limiter, azureClient, ingestor, records, allowlist, logger)

	app := &handlers.App{
		Log:            logger,
		Orchestrator:   orchestrator,
		Records:        records,
		Users:          users,
		Diagrams:       diagrams,
		Models:         models,
		Storage:        store,
		Ingestor:       ingestor,
		Provider:       azureClient,
		Allowlist:      allowlist,
		DiagramCredits: cfg.DiagramCredits,
		StoragePath:    cfg.StoragePath,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		Geo:            geo,
		AllowedOrigins: cfg.AllowedOrigins,
		StoragePath:    cfg.StoragePath,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildLimiter picks the shared Redis limiter when a Redis URL is set,
// otherwise the in-process one.
func buildLimiter(cfg *infra.Config, logger infra.Logger) ratelimit.Limiter {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis url, falling back to in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	return ratelimit.NewRedisLimiter(redis.NewClient(opts), cfg.RateLimitMax, cfg.RateLimitWindow, logger)
}
