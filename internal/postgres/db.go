package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS stock_items (
	id       BIGSERIAL PRIMARY KEY,
	sku      TEXT NOT NULL,
	file     TEXT NOT NULL,
	position BIGSERIAL
);
CREATE INDEX IF NOT EXISTS stock_items_sku_position ON stock_items (sku, position);

CREATE TABLE IF NOT EXISTS orders (
	id         TEXT PRIMARY KEY,
	chat_id    BIGINT NOT NULL,
	sku        TEXT NOT NULL,
	title      TEXT NOT NULL,
	price      NUMERIC(12,2) NOT NULL CHECK (price > 0),
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	payment_id TEXT,
	item_file  TEXT
);
`

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
