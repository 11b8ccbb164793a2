package domain

import (
	"context"
	"time"
)

// Diagram is a generated engineering diagram together with its configuration.
type Diagram struct {
	ID          string
	UserID      string
	Name        string
	Type        string
	Category    string
	Description string
	Config      []byte
	ImageURL    string
	Tags        string
	CreatedAt   time.Time
}

// DiagramRepository persists engineering diagram records.
type DiagramRepository interface {
	Insert(ctx context.Context, d *Diagram) error
	GetByID(ctx context.Context, id string) (*Diagram, error)
	ListByUser(ctx context.Context, userID string) ([]Diagram, error)
}
