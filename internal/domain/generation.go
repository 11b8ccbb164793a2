package domain

import (
	"context"
	"time"
)

// Generation is one persisted surviving variation of a prediction. Records
// are immutable once created.
type Generation struct {
	ID              string
	Prompt          string
	AspectRatio     string
	IsPublic        bool
	ModelID         string
	AssetURL        string
	PredictionID    string
	UserID          *string
	VariationIndex  int
	TotalVariations int
	CreatedAt       time.Time
}

// GenerationRepository persists and resolves generation records.
type GenerationRepository interface {
	Insert(ctx context.Context, g *Generation) error
	// FindByCorrelation resolves a record by its own id or by the
	// prediction id it belongs to, whichever matches first.
	FindByCorrelation(ctx context.Context, id string) (*Generation, error)
}
