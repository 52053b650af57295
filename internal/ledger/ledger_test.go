package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLedger_TakeIsFIFOThenOutOfStock(t *testing.T) {
	ctx := context.Background()
	doc := NewMemoryDocument()
	l := NewStockLedger(doc)
	require.NoError(t, l.Add(ctx, "A",
		orders.StockItem{File: "img1.png"},
		orders.StockItem{File: "img2.png"},
		orders.StockItem{File: "img3.png"},
	))

	for _, want := range []string{"img1.png", "img2.png", "img3.png"} {
		item, err := l.Take(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, want, item.File)
	}

	savesBefore := doc.Saves()
	_, err := l.Take(ctx, "A")
	require.ErrorIs(t, err, orders.ErrOutOfStock)
	assert.Equal(t, savesBefore, doc.Saves(), "an empty take must not rewrite the ledger")
}

func TestStockLedger_UnknownSKU(t *testing.T) {
	l := NewStockLedger(NewMemoryDocument())
	_, err := l.Take(context.Background(), "nope")
	require.ErrorIs(t, err, orders.ErrOutOfStock)
}

func TestStockLedger_ConcurrentTakesNeverShareAnItem(t *testing.T) {
	ctx := context.Background()
	l := NewStockLedger(NewMemoryDocument())
	const n = 50
	for i := 0; i < n; i++ {
		require.NoError(t, l.Add(ctx, "A", orders.StockItem{File: fmt.Sprintf("img%d.png", i)}))
	}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
		outs int
	)
	for i := 0; i < n+10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := l.Take(ctx, "A")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outs++
				return
			}
			seen[item.File]++
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.Equal(t, 10, outs)
	for f, c := range seen {
		assert.Equal(t, 1, c, f)
	}
}

func TestFileDocument_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "A": [{"file": "assets/a1.png"}, {"file": "assets/a2.png"}],
  "B": []
}`), 0o644))

	item, err := NewStockLedger(NewFileDocument(path)).Take(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "assets/a1.png", item.File)

	counts, err := NewStockLedger(NewFileDocument(path)).Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 0}, counts)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileDocument_MissingFileIsEmpty(t *testing.T) {
	l := NewOrderLedger(NewFileDocument(filepath.Join(t.TempDir(), "orders.json")))
	_, err := l.Get(context.Background(), "x")
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func TestOrderLedger_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.json")
	l := NewOrderLedger(NewFileDocument(path))

	o, err := l.Create(ctx, orders.NewOrder{ChatID: 99, SKU: "A", Title: "eSIM A", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.NotZero(t, o.CreatedAt)

	got, err := NewOrderLedger(NewFileDocument(path)).Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.ChatID)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Price))

	upd, err := l.Update(ctx, o.ID, orders.Patch{Status: orders.StatusApproved, PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusApproved, upd.Status)
	assert.Equal(t, "pay-1", upd.PaymentID)
	assert.Equal(t, "A", upd.SKU)
}

func TestOrderLedger_UpdateUnknown(t *testing.T) {
	doc := NewMemoryDocument()
	l := NewOrderLedger(doc)
	_, err := l.Update(context.Background(), "missing", orders.Patch{Status: orders.StatusApproved})
	require.ErrorIs(t, err, orders.ErrNotFound)
	assert.Zero(t, doc.Saves())
}

func TestOrderLedger_RejectsNonPositivePrice(t *testing.T) {
	doc := NewMemoryDocument()
	_, err := NewOrderLedger(doc).Create(context.Background(), orders.NewOrder{SKU: "A", Price: decimal.Zero})
	require.ErrorIs(t, err, orders.ErrInvalidPrice)
	assert.Zero(t, doc.Saves())
}

func TestOrderLedger_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	l := NewOrderLedger(NewMemoryDocument())
	ids := map[string]bool{}
	for i := 0; i < 20; i++ {
		o, err := l.Create(ctx, orders.NewOrder{SKU: "A", Price: decimal.NewFromInt(1)})
		require.NoError(t, err)
		require.False(t, ids[o.ID])
		ids[o.ID] = true
	}
}
