package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

type LeadRepository struct {
	pool *db.Pool
}

func NewLeadRepository(pool *db.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

func (r *LeadRepository) Durable() bool { return true }

func (r *LeadRepository) Insert(ctx context.Context, lead *model.Lead) (string, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, message, consent, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`, lead.Name, lead.Email, lead.Phone, lead.Message, lead.Consent, lead.Source).
		Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return "", err
	}
	return lead.ID, nil
}

func (r *LeadRepository) ListRecent(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, phone, message, consent, source, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, limitOr(limit, 50))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Lead, error) {
		var l model.Lead
		err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Message, &l.Consent, &l.Source, &l.CreatedAt)
		return l, err
	})
}
