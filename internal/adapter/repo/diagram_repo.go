package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/infra"
)

// DiagramRepositoryPG implements domain.DiagramRepository using PostgreSQL.
type DiagramRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDiagramRepository constructs a new diagram repository instance.
func NewDiagramRepository(sql infra.SQLExecutor) *DiagramRepositoryPG {
	return &DiagramRepositoryPG{sql: sql}
}

// Insert persists a generated diagram record.
func (r *DiagramRepositoryPG) Insert(ctx context.Context, d *domain.Diagram) error {
	query := `
INSERT INTO engineering_diagrams (id, user_id, name, type, category, description, config, image_url, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.sql.Exec(ctx, query,
		d.ID,
		d.UserID,
		d.Name,
		d.Type,
		d.Category,
		d.Description,
		d.Config,
		d.ImageURL,
		d.Tags,
	)
	return err
}

// GetByID fetches a diagram record.
func (r *DiagramRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Diagram, error) {
	row := r.sql.QueryRow(ctx, `
SELECT id, user_id, name, type, category, description, config, image_url, tags, created_at
FROM engineering_diagrams
WHERE id = $1;
`, id)
	return scanDiagram(row)
}

// ListByUser returns the user's diagrams, newest first.
func (r *DiagramRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Diagram, error) {
	rows, err := r.sql.Query(ctx, `
SELECT id, user_id, name, type, category, description, config, image_url, tags, created_at
FROM engineering_diagrams
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagrams []domain.Diagram
	for rows.Next() {
		var d domain.Diagram
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.Category, &d.Description, &d.Config, &d.ImageURL, &d.Tags, &d.CreatedAt); err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return diagrams, nil
}

func scanDiagram(row pgx.Row) (*domain.Diagram, error) {
	var d domain.Diagram
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &d.Category, &d.Description, &d.Config, &d.ImageURL, &d.Tags, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

var _ domain.DiagramRepository = (*DiagramRepositoryPG)(nil)
