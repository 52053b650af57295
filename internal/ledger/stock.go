package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
)

// stockDoc is SKU -> queue, head first.
type stockDoc map[string][]orders.StockItem

type StockLedger struct {
	mu  sync.Mutex
	doc Document
}

var _ orders.StockLedger = (*StockLedger)(nil)

func NewStockLedger(doc Document) *StockLedger {
	return &StockLedger{doc: doc}
}

func (l *StockLedger) Take(ctx context.Context, sku string) (orders.StockItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stock := stockDoc{}
	if err := l.doc.Load(ctx, &stock); err != nil {
		return orders.StockItem{}, err
	}
	queue := stock[sku]
	if len(queue) == 0 {
		return orders.StockItem{}, orders.ErrOutOfStock
	}
	item := queue[0]
	stock[sku] = queue[1:]
	if err := l.doc.Save(ctx, stock); err != nil {
		return orders.StockItem{}, err
	}
	return item, nil
}

// Add appends items to the tail of the SKU queue.
func (l *StockLedger) Add(ctx context.Context, sku string, items ...orders.StockItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stock := stockDoc{}
	if err := l.doc.Load(ctx, &stock); err != nil {
		return err
	}
	stock[sku] = append(stock[sku], items...)
	return l.doc.Save(ctx, stock)
}

func (l *StockLedger) Counts(ctx context.Context) (map[string]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stock := stockDoc{}
	if err := l.doc.Load(ctx, &stock); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(stock))
	for sku, q := range stock {
		out[sku] = len(q)
	}
	return out, nil
}

// Snapshot returns every queue, SKUs sorted, for provisioning tools.
func (l *StockLedger) Snapshot(ctx context.Context) ([]string, map[string][]orders.StockItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stock := stockDoc{}
	if err := l.doc.Load(ctx, &stock); err != nil {
		return nil, nil, err
	}
	skus := make([]string, 0, len(stock))
	for sku := range stock {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus, stock, nil
}
