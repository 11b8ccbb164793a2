package modelcfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "models.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestStoreScaffoldsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "models.json")
	if _, err := NewStore(path); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not scaffolded: %v", err)
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create(Model{
		Label:    "FLUX Pro",
		Endpoint: "https://azure.example.com/images",
		APIKey:   "secret-key-123",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Provider != ProviderAzure {
		t.Fatalf("provider = %q, want azure default", created.Provider)
	}
	if created.CreatedAt == "" || created.UpdatedAt == "" {
		t.Fatalf("timestamps not set: %+v", created)
	}

	got, err := store.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Label != "FLUX Pro" {
		t.Fatalf("label = %q", got.Label)
	}
}

func TestStoreCreateValidation(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create(Model{Label: "x", Endpoint: "", APIKey: "k"}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
	if _, err := store.Create(Model{Label: "x", Endpoint: "e", APIKey: "k", Provider: "gradio"}); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	if _, err := store.Create(Model{ID: "dup", Label: "x", Endpoint: "e", APIKey: "k"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(Model{ID: "dup", Label: "y", Endpoint: "e", APIKey: "k"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create(Model{Label: "A", Endpoint: "e", APIKey: "k", Enabled: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	label := "B"
	enabled := false
	updated, err := store.Update(created.ID, Update{Label: &label, Enabled: &enabled})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Label != "B" || updated.Enabled {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Endpoint != "e" {
		t.Fatalf("untouched field changed: %q", updated.Endpoint)
	}

	if _, err := store.Update("missing", Update{Label: &label}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create(Model{Label: "A", Endpoint: "e", APIKey: "k"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreFirstEnabled(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create(Model{ID: "a", Label: "A", Endpoint: "e", APIKey: "k", Enabled: false}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(Model{ID: "b", Label: "B", Endpoint: "e", APIKey: "k", Enabled: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	model, err := store.FirstEnabled()
	if err != nil {
		t.Fatalf("FirstEnabled: %v", err)
	}
	if model.ID != "b" {
		t.Fatalf("first enabled = %q, want b", model.ID)
	}
}

func TestStoreResolvesEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_AZURE_KEY", "resolved-secret")
	store := newTestStore(t)
	created, err := store.Create(Model{Label: "A", Endpoint: "e", APIKey: "${TEST_AZURE_KEY}"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByID(created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.APIKey != "resolved-secret" {
		t.Fatalf("apiKey = %q, want resolved value", got.APIKey)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcdef", "******"},
		{"abcdefg", "abc****efg"},
		{"sk-1234567890", "sk-****890"},
	}
	for _, tt := range tests {
		if got := MaskAPIKey(tt.in); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeMasksKey(t *testing.T) {
	m := Sanitize(Model{ID: "a", APIKey: "sk-1234567890"})
	if m.APIKey != "sk-****890" {
		t.Fatalf("sanitized key = %q", m.APIKey)
	}
}
