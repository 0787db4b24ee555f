package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/config"
	"github.com/shard-legends/squad-planner-service/pkg/logger"
)

// DB holds the pgx pool and an sqlx handle sharing the same connections.
type DB struct {
	pool *pgxpool.Pool
	sqlx *sqlx.DB
}

func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := ParsePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.Int("max_connections", cfg.MaxConnections),
		zap.Duration("max_idle_time", cfg.MaxIdleTime),
	)

	return &DB{
		pool: pool,
		sqlx: sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
	}, nil
}

// ParsePoolConfig applies the configured limits to the connection string.
func ParsePoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	return poolConfig, nil
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// SQLX returns the database/sql view used by the key-value store.
func (db *DB) SQLX() *sqlx.DB {
	return db.sqlx
}

func (db *DB) Close() {
	if db.sqlx != nil {
		_ = db.sqlx.Close()
	}
	if db.pool != nil {
		db.pool.Close()
		logger.Info("Database connection pool closed")
	}
}

func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query health check failed: %w", err)
	}

	return nil
}

func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}
