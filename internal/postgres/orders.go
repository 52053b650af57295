package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ DB *pgxpool.Pool }

var _ orders.OrderLedger = (*OrderRepo)(nil)

const orderColumns = `id, chat_id, sku, title, price::text, status, created_at, COALESCE(payment_id, ''), COALESCE(item_file, '')`

func (r *OrderRepo) Create(ctx context.Context, in orders.NewOrder) (*orders.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("postgres: create order: %w", err)
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, chat_id, sku, title, price, status)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING `+orderColumns,
		uuid.NewString(), in.ChatID, in.SKU, in.Title, in.Price.String(), string(orders.StatusPending))
	return scanOrder(row)
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID)
	return scanOrder(row)
}

func (r *OrderRepo) Update(ctx context.Context, orderID string, p orders.Patch) (*orders.Order, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE orders SET
			status     = COALESCE(NULLIF($2, ''), status),
			payment_id = COALESCE(NULLIF($3, ''), payment_id),
			item_file  = COALESCE(NULLIF($4, ''), item_file)
		WHERE id=$1
		RETURNING `+orderColumns,
		orderID, string(p.Status), p.PaymentID, p.ItemFile)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var (
		o       orders.Order
		price   string
		status  string
		created time.Time
	)
	err := row.Scan(&o.ID, &o.ChatID, &o.SKU, &o.Title, &price, &status, &created, &o.PaymentID, &o.ItemFile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("postgres: order %s price %q: %w", o.ID, price, err)
	}
	o.Status = orders.Status(status)
	o.CreatedAt = created.UnixMilli()
	return &o, nil
}
