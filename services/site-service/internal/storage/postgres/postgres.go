// Package postgres implements the site-service stores on PostgreSQL via pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStores wires every capability to the same pool.
func NewStores(pool *db.Pool) storage.Stores {
	return storage.Stores{
		Appointments: NewAppointmentRepository(pool),
		Leads:        NewLeadRepository(pool),
		Content:      NewContentRepository(pool),
		Status:       NewStatusReporter(pool),
	}
}

func limitOr(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
