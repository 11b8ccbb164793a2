package modelcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProviderAzure is the only provider the pipeline supports.
const ProviderAzure = "azure"

// ErrNotFound indicates the requested model configuration does not exist.
var ErrNotFound = errors.New("modelcfg: model not found")

// Model is one image-generation endpoint configuration. API keys and
// endpoints may reference environment variables with the ${NAME} syntax and
// are resolved on read.
type Model struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Provider    string `json:"provider"`
	Endpoint    string `json:"endpoint"`
	APIKey      string `json:"apiKey"`
	Quality     string `json:"quality,omitempty"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type fileShape struct {
	Models []Model `json:"models"`
}

// Store reads and writes model configurations from a JSON file. All
// mutations rewrite the file; a mutex serializes concurrent handler access.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore builds a store over the given file path, scaffolding an empty
// file when none exists.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("modelcfg: path is required")
	}
	s := &Store{path: path}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("modelcfg: ensure config dir: %w", err)
	}
	initial, _ := json.MarshalIndent(fileShape{Models: []Model{}}, "", "  ")
	if err := os.WriteFile(s.path, initial, 0o600); err != nil {
		return fmt.Errorf("modelcfg: scaffold config file: %w", err)
	}
	return nil
}

var envPlaceholder = regexp.MustCompile(`^\$\{(.+)}$`)

func resolvePlaceholder(value string) string {
	if m := envPlaceholder.FindStringSubmatch(value); m != nil {
		return os.Getenv(m[1])
	}
	return value
}

func (s *Store) load() (fileShape, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fileShape{}, fmt.Errorf("modelcfg: read config: %w", err)
	}
	var data fileShape
	if err := json.Unmarshal(raw, &data); err != nil {
		return fileShape{}, fmt.Errorf("modelcfg: parse config: %w", err)
	}
	return data, nil
}

func (s *Store) save(data fileShape) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("modelcfg: encode config: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("modelcfg: write config: %w", err)
	}
	return nil
}

// List returns all configurations with placeholders resolved.
func (s *Store) List() ([]Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	models := make([]Model, 0, len(data.Models))
	for _, m := range data.Models {
		m.Endpoint = resolvePlaceholder(m.Endpoint)
		m.APIKey = resolvePlaceholder(m.APIKey)
		models = append(models, m)
	}
	return models, nil
}

// GetByID resolves one configuration, or ErrNotFound.
func (s *Store) GetByID(id string) (*Model, error) {
	models, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].ID == id {
			return &models[i], nil
		}
	}
	return nil, ErrNotFound
}

// FirstEnabled returns the first enabled Azure configuration, or ErrNotFound.
func (s *Store) FirstEnabled() (*Model, error) {
	models, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].Enabled && models[i].Provider == ProviderAzure {
			return &models[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a new configuration. A missing id is generated.
func (s *Store) Create(m Model) (*Model, error) {
	if strings.TrimSpace(m.Label) == "" || strings.TrimSpace(m.Endpoint) == "" || strings.TrimSpace(m.APIKey) == "" {
		return nil, errors.New("modelcfg: label, endpoint and apiKey are required")
	}
	if m.Provider == "" {
		m.Provider = ProviderAzure
	}
	if m.Provider != ProviderAzure {
		return nil, fmt.Errorf("modelcfg: unsupported provider %q", m.Provider)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for _, existing := range data.Models {
		if existing.ID == m.ID {
			return nil, fmt.Errorf("modelcfg: model %q already exists", m.ID)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	m.CreatedAt = now
	m.UpdatedAt = now
	data.Models = append(data.Models, m)
	if err := s.save(data); err != nil {
		return nil, err
	}
	return &m, nil
}

// Update patches an existing configuration. Non-nil fields in updates are
// applied; id and createdAt are immutable.
type Update struct {
	Label       *string `json:"label"`
	Endpoint    *string `json:"endpoint"`
	APIKey      *string `json:"apiKey"`
	Quality     *string `json:"quality"`
	Enabled     *bool   `json:"enabled"`
	Description *string `json:"description"`
}

func (s *Store) Update(id string, updates Update) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range data.Models {
		if data.Models[i].ID != id {
			continue
		}
		m := &data.Models[i]
		if updates.Label != nil {
			m.Label = *updates.Label
		}
		if updates.Endpoint != nil {
			m.Endpoint = *updates.Endpoint
		}
		if updates.APIKey != nil {
			m.APIKey = *updates.APIKey
		}
		if updates.Quality != nil {
			m.Quality = *updates.Quality
		}
		if updates.Enabled != nil {
			m.Enabled = *updates.Enabled
		}
		if updates.Description != nil {
			m.Description = *updates.Description
		}
		m.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		updated := *m
		if err := s.save(data); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Delete removes a configuration, or returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	filtered := data.Models[:0]
	for _, m := range data.Models {
		if m.ID != id {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == len(data.Models) {
		return ErrNotFound
	}
	data.Models = filtered
	return s.save(data)
}

// MaskAPIKey obscures a credential for read responses, keeping the first and
// last three characters.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 6 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:3] + "****" + apiKey[len(apiKey)-3:]
}

// Sanitize returns a copy safe to serve to clients.
func Sanitize(m Model) Model {
	m.APIKey = MaskAPIKey(m.APIKey)
	return m
}
