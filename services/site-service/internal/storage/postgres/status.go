package postgres

import (
	"context"

	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

type StatusReporter struct {
	pool *db.Pool
}

func NewStatusReporter(pool *db.Pool) *StatusReporter {
	return &StatusReporter{pool: pool}
}

func (s *StatusReporter) Status(ctx context.Context) storage.Status {
	st := storage.Status{Name: s.pool.Name()}
	if err := s.pool.Ping(ctx); err != nil {
		st.Err = err
		return st
	}
	st.Connected = true
	tables, err := s.pool.ListTables(ctx, 10)
	if err != nil {
		st.Err = err
		return st
	}
	st.Tables = tables
	return st
}
