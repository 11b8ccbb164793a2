package prediction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fluxgallery/internal/identity"
	"fluxgallery/internal/providers/azure"
	"fluxgallery/internal/storage"
)

// ErrNoImageData marks a provider entry that carried neither a URL nor
// inline bytes. The orchestrator drops the variation and continues.
var ErrNoImageData = errors.New("prediction: no image data in provider entry")

// largePayloadBytes is the threshold above which ingest warns about payload
// size. The warning is a hint for future compression work and never blocks
// the upload.
const largePayloadBytes = 2 << 20

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Ingestor turns a provider image entry into a stable public URL, uploading
// inline payloads through the storage service.
type Ingestor struct {
	store  *storage.Service
	logger zerolog.Logger
}

// NewIngestor wires the storage capability.
func NewIngestor(store *storage.Service, logger zerolog.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger}
}

// Ingest resolves the final URL for one variation. Direct remote URLs pass
// through unchanged; inline base64 payloads are decoded and uploaded under a
// key composed of identity, model, timestamp and a short random suffix.
func (ing *Ingestor) Ingest(ctx context.Context, entry *azure.ImageData, id identity.Identity, modelID string) (string, error) {
	if entry == nil {
		return "", ErrNoImageData
	}

	if entry.B64JSON != "" {
		return ing.uploadInline(ctx, entry.B64JSON, id, modelID)
	}
	if entry.URL != "" {
		return entry.URL, nil
	}
	return "", ErrNoImageData
}

func (ing *Ingestor) uploadInline(ctx context.Context, b64 string, id identity.Identity, modelID string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(b64, ""))
	if err != nil {
		return "", fmt.Errorf("prediction: decode image payload: %w", err)
	}

	ing.logger.Debug().
		Int("bytes", len(data)).
		Str("model", modelID).
		Msg("prediction: decoded inline image")
	if len(data) > largePayloadBytes {
		ing.logger.Warn().
			Int("bytes", len(data)).
			Msg("prediction: large image payload, consider compression")
	}

	key := objectKey(id, modelID)
	url, err := ing.store.Upload(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("prediction: upload image: %w", err)
	}
	ing.logger.Info().Str("key", key).Msg("prediction: image uploaded")
	return url, nil
}

func objectKey(id identity.Identity, modelID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s-%d-%s.jpg", id.ID, modelID, time.Now().UnixMilli(), suffix)
}
