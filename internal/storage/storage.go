package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Provider identifies an upload backend.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderR2    Provider = "r2"
)

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.TrimSpace(name)) {
	case ProviderLocal:
		return ProviderLocal, nil
	case ProviderR2:
		return ProviderR2, nil
	default:
		return "", fmt.Errorf("storage: unknown provider %q", name)
	}
}

// Uploader persists bytes under an object key and returns a stable public
// URL for the stored asset.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Service routes uploads to the active provider and falls back to local
// storage when the cloud bucket fails. The active provider can be switched
// at runtime through the storage-config endpoint.
type Service struct {
	mu            sync.RWMutex
	provider      Provider
	local         Uploader
	remote        Uploader
	fallbackLocal bool
	logger        zerolog.Logger
}

// NewService wires the backends. remote may be nil when the deployment has
// no bucket configured; switching to it then fails.
func NewService(provider Provider, local, remote Uploader, logger zerolog.Logger) *Service {
	return &Service{
		provider:      provider,
		local:         local,
		remote:        remote,
		fallbackLocal: true,
		logger:        logger,
	}
}

// Provider returns the active backend.
func (s *Service) Provider() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// Available lists the backends this deployment can switch between.
func (s *Service) Available() []Provider {
	providers := []Provider{ProviderLocal}
	if s.remote != nil {
		providers = append(providers, ProviderR2)
	}
	return providers
}

// SetProvider switches the active backend.
func (s *Service) SetProvider(p Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == ProviderR2 && s.remote == nil {
		return fmt.Errorf("storage: r2 backend is not configured")
	}
	s.provider = p
	s.logger.Info().Str("provider", string(p)).Msg("storage: provider switched")
	return nil
}

// Upload writes through the active backend. A cloud failure falls back to
// local storage before giving up.
func (s *Service) Upload(ctx context.Context, key string, data []byte) (string, error) {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	backend := s.local
	if provider == ProviderR2 {
		backend = s.remote
	}
	if backend == nil {
		return "", fmt.Errorf("storage: provider %q is not configured", provider)
	}

	url, err := backend.Upload(ctx, key, data)
	if err == nil {
		return url, nil
	}

	if provider == ProviderR2 && s.fallbackLocal && s.local != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("storage: r2 upload failed, falling back to local")
		return s.local.Upload(ctx, key, data)
	}
	return "", err
}
