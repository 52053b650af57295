package orders

import "context"

// StockLedger hands out stock items per SKU in insertion order.
type StockLedger interface {
	// Take removes the head item for sku. It returns ErrOutOfStock when the
	// queue is empty or the SKU is unknown.
	Take(ctx context.Context, sku string) (StockItem, error)
	Counts(ctx context.Context) (map[string]int, error)
}

type OrderLedger interface {
	Create(ctx context.Context, in NewOrder) (*Order, error)
	Get(ctx context.Context, orderID string) (*Order, error)
	// Update returns ErrNotFound for unknown ids.
	Update(ctx context.Context, orderID string, p Patch) (*Order, error)
}
