package storage

import (
	"context"

	"github.com/websitekoning/koning-api/libs/db"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery is one processed notification event.
type Delivery struct {
	EventID    string
	Kind       string
	Recipients []string
	Subject    string
	Status     string
	Attempts   int
	Error      string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deliveries (event_id, kind, recipients, subject, status, attempts, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO UPDATE
		SET status = EXCLUDED.status,
			attempts = deliveries.attempts + EXCLUDED.attempts,
			error = EXCLUDED.error,
			updated_at = now()
	`, d.EventID, d.Kind, d.Recipients, d.Subject, d.Status, d.Attempts, d.Error)
	return err
}
