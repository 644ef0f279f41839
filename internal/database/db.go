// Package database persists extracted listings to Postgres. Optional at
// runtime: the crawler and server run file-only when no database is
// configured.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avtokat/encar-scraper/internal/config"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id            TEXT PRIMARY KEY,
		brand         TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		price         TEXT NOT NULL DEFAULT '',
		configuration TEXT NOT NULL DEFAULT '',
		year          TEXT NOT NULL DEFAULT '',
		mileage       TEXT NOT NULL DEFAULT '',
		fuel          TEXT NOT NULL DEFAULT '',
		vehnumber     TEXT NOT NULL DEFAULT '',
		transmission  TEXT NOT NULL DEFAULT '',
		car_type      TEXT NOT NULL DEFAULT '',
		color         TEXT NOT NULL DEFAULT '',
		seating       TEXT NOT NULL DEFAULT '',
		displacement  TEXT NOT NULL DEFAULT '',
		region        TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL DEFAULT '',
		parsed_at     TEXT NOT NULL DEFAULT '',
		images        JSONB NOT NULL DEFAULT '[]',
		options       JSONB NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
