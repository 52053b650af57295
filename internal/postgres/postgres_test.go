package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("STOREFRONT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, EnsureSchema(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE stock_items, orders`)
	require.NoError(t, err)
	return db
}

func TestStockRepo_FIFOAndOutOfStock(t *testing.T) {
	ctx := context.Background()
	repo := &StockRepo{DB: testPool(t)}

	n, err := repo.Seed(ctx, []string{"A"}, map[string][]orders.StockItem{
		"A": {{File: "a1.png"}, {File: "a2.png"}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	for _, want := range []string{"a1.png", "a2.png"} {
		it, err := repo.Take(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, want, it.File)
	}
	_, err = repo.Take(ctx, "A")
	require.ErrorIs(t, err, orders.ErrOutOfStock)
}

func TestStockRepo_ConcurrentTakes(t *testing.T) {
	ctx := context.Background()
	repo := &StockRepo{DB: testPool(t)}
	_, err := repo.Seed(ctx, []string{"A"}, map[string][]orders.StockItem{
		"A": {{File: "1"}, {File: "2"}, {File: "3"}},
	})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		got  = map[string]int{}
		outs int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, err := repo.Take(ctx, "A")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outs++
				return
			}
			got[it.File]++
		}()
	}
	wg.Wait()
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, got)
	assert.Equal(t, 3, outs)
}

func TestOrderRepo_CreateUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &OrderRepo{DB: testPool(t)}

	o, err := repo.Create(ctx, orders.NewOrder{ChatID: 5, SKU: "A", Title: "eSIM", Price: decimal.RequireFromString("100.50")})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)

	upd, err := repo.Update(ctx, o.ID, orders.Patch{Status: orders.StatusApproved, PaymentID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusApproved, upd.Status)
	assert.Equal(t, "p1", upd.PaymentID)
	assert.True(t, decimal.RequireFromString("100.5").Equal(upd.Price))

	_, err = repo.Update(ctx, "missing", orders.Patch{Status: orders.StatusApproved})
	require.ErrorIs(t, err, orders.ErrNotFound)
}
