package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/google/uuid"
)

type orderDoc map[string]*orders.Order

type OrderLedger struct {
	mu    sync.Mutex
	doc   Document
	newID func() string
	now   func() time.Time
}

var _ orders.OrderLedger = (*OrderLedger)(nil)

func NewOrderLedger(doc Document) *OrderLedger {
	return &OrderLedger{doc: doc, newID: uuid.NewString, now: time.Now}
}

func (l *OrderLedger) Create(ctx context.Context, in orders.NewOrder) (*orders.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("ledger: create order: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	all := orderDoc{}
	if err := l.doc.Load(ctx, &all); err != nil {
		return nil, err
	}
	id := l.newID()
	for all[id] != nil {
		id = l.newID()
	}
	o := &orders.Order{
		ID:        id,
		ChatID:    in.ChatID,
		SKU:       in.SKU,
		Title:     in.Title,
		Price:     in.Price,
		Status:    orders.StatusPending,
		CreatedAt: l.now().UnixMilli(),
	}
	all[id] = o
	if err := l.doc.Save(ctx, all); err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

func (l *OrderLedger) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := orderDoc{}
	if err := l.doc.Load(ctx, &all); err != nil {
		return nil, err
	}
	o, ok := all[orderID]
	if !ok || o == nil {
		return nil, orders.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (l *OrderLedger) Update(ctx context.Context, orderID string, p orders.Patch) (*orders.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := orderDoc{}
	if err := l.doc.Load(ctx, &all); err != nil {
		return nil, err
	}
	o, ok := all[orderID]
	if !ok || o == nil {
		return nil, orders.ErrNotFound
	}
	p.Apply(o)
	if err := l.doc.Save(ctx, all); err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}
