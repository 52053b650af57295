package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockRepo struct{ DB *pgxpool.Pool }

var _ orders.StockLedger = (*StockRepo)(nil)

// Take deletes the oldest row for sku. SKIP LOCKED lets two concurrent takes
// on the same SKU walk away with different rows instead of queueing.
func (r *StockRepo) Take(ctx context.Context, sku string) (orders.StockItem, error) {
	var item orders.StockItem
	err := r.DB.QueryRow(ctx, `
		DELETE FROM stock_items
		WHERE id = (
			SELECT id FROM stock_items
			WHERE sku = $1
			ORDER BY position
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING file`, sku).Scan(&item.File)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.StockItem{}, orders.ErrOutOfStock
	}
	if err != nil {
		return orders.StockItem{}, fmt.Errorf("postgres: take %s: %w", sku, err)
	}
	return item, nil
}

func (r *StockRepo) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT sku, COUNT(*) FROM stock_items GROUP BY sku ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var sku string
		var n int
		if err := rows.Scan(&sku, &n); err != nil {
			return nil, err
		}
		out[sku] = n
	}
	return out, rows.Err()
}

// Seed appends items per SKU in the given order inside one transaction.
func (r *StockRepo) Seed(ctx context.Context, skus []string, stock map[string][]orders.StockItem) (int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n := 0
	for _, sku := range skus {
		for _, it := range stock[sku] {
			if _, err := tx.Exec(ctx, `INSERT INTO stock_items(sku, file) VALUES ($1, $2)`, sku, it.File); err != nil {
				return 0, fmt.Errorf("postgres: seed %s: %w", sku, err)
			}
			n++
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
