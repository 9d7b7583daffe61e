package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// PoolSettings tunes the pgx pool beyond what the connection URL carries.
// Zero values keep the pgxpool defaults.
type PoolSettings struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string, settings PoolSettings) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if settings.MaxConns > 0 {
		poolCfg.MaxConns = settings.MaxConns
	}
	if settings.MinConns > 0 {
		poolCfg.MinConns = settings.MinConns
	}
	if settings.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = settings.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
