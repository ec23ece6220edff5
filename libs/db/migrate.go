package db

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies goose SQL migrations through a database/sql handle
// borrowed from the pool.
type Migrator struct {
	provider *goose.Provider
	closeDB  func() error
}

// NewMigrator reads migrations from the root of files.
func NewMigrator(pool *Pool, files fs.FS) (*Migrator, error) {
	sqlDB := stdlib.OpenDBFromPool(pool.Pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, files,
		goose.WithVerbose(false),
	)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: provider, closeDB: sqlDB.Close}, nil
}

// Up applies all pending migrations and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}

// Version reports the highest applied migration version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return m.provider.Status(ctx)
}

// Close releases the database/sql wrapper; the pool stays open.
func (m *Migrator) Close() error {
	if m.closeDB != nil {
		return m.closeDB()
	}
	return nil
}
