package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/infra"
)

// GenerationRepositoryPG implements domain.GenerationRepository using PostgreSQL.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewGenerationRepository constructs a new generation repository instance.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql}
}

// Insert persists one surviving variation. Records are never updated.
func (r *GenerationRepositoryPG) Insert(ctx context.Context, g *domain.Generation) error {
	query := `
INSERT INTO generations (id, prompt, aspect_ratio, is_public, model_id, asset_url, prediction_id, user_id, variation_index, total_variations)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := r.sql.Exec(ctx, query,
		g.ID,
		g.Prompt,
		g.AspectRatio,
		g.IsPublic,
		g.ModelID,
		g.AssetURL,
		g.PredictionID,
		g.UserID,
		g.VariationIndex,
		g.TotalVariations,
	)
	return err
}

// FindByCorrelation resolves a record by its own id or by the prediction id
// it belongs to; the poll endpoint looks records up both ways. For a
// multi-variation prediction the first variation wins.
func (r *GenerationRepositoryPG) FindByCorrelation(ctx context.Context, id string) (*domain.Generation, error) {
	query := `
SELECT id, prompt, aspect_ratio, is_public, model_id, asset_url, prediction_id, user_id, variation_index, total_variations, created_at
FROM generations
WHERE id = $1 OR prediction_id = $1
ORDER BY variation_index ASC
LIMIT 1;
`
	row := r.sql.QueryRow(ctx, query, id)
	return scanGeneration(row)
}

func scanGeneration(row pgx.Row) (*domain.Generation, error) {
	var g domain.Generation
	err := row.Scan(
		&g.ID,
		&g.Prompt,
		&g.AspectRatio,
		&g.IsPublic,
		&g.ModelID,
		&g.AssetURL,
		&g.PredictionID,
		&g.UserID,
		&g.VariationIndex,
		&g.TotalVariations,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
