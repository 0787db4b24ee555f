package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS planner_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresStore keeps values in the planner_kv table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the planner_kv table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createTableQuery); err != nil {
		return errors.Wrap(err, "failed to create planner_kv table")
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM planner_kv WHERE key = $1`

	var value string
	err := p.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "failed to get value")
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO planner_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return errors.Wrap(err, "failed to set value")
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM planner_kv WHERE key IN (?)`, keys)
	if err != nil {
		return errors.Wrap(err, "failed to build delete query")
	}
	query = p.db.Rebind(query)

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to delete values")
	}
	return nil
}

func (p *PostgresStore) Health(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "postgres health check failed")
	}
	return nil
}

func (p *PostgresStore) Name() string { return "postgres" }
