// Command stockctl provisions and inspects the stock ledger.
//
//	stockctl seed  -file stock.json        load a stock document into Postgres
//	stockctl add   -sku SKU img1.png ...   append items to the configured ledger
//	stockctl count                         remaining items per SKU
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ariefcatur/go-esim-storefront/internal/catalog"
	"github.com/ariefcatur/go-esim-storefront/internal/config"
	"github.com/ariefcatur/go-esim-storefront/internal/ledger"
	"github.com/ariefcatur/go-esim-storefront/internal/logging"
	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/ariefcatur/go-esim-storefront/internal/postgres"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: stockctl seed|add|count [flags]")

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.MustNewLogger(cfg.ServiceName+"-stockctl", cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		log.Fatal("stockctl_failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "seed":
		return seed(ctx, cfg, args[1:], out)
	case "add":
		return add(ctx, cfg, args[1:], out)
	case "count":
		return count(ctx, cfg, out)
	}
	return errUsage
}

func seed(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", cfg.StockFile, "stock document to load")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("%w: POSTGRES_DSN", config.ErrConfigurationMissing)
	}

	skus, stock, err := ledger.NewStockLedger(ledger.NewFileDocument(*file)).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	n, err := (&postgres.StockRepo{DB: db}).Seed(ctx, skus, stock)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "seeded %d items across %d SKUs from %s\n", n, len(skus), *file)
	return err
}

func add(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	sku := fs.String("sku", "", "catalog SKU")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := catalog.Default().Lookup(*sku); err != nil {
		return fmt.Errorf("%w: %q", err, *sku)
	}
	if fs.NArg() == 0 {
		return errors.New("add: no item files given")
	}
	items := make([]orders.StockItem, 0, fs.NArg())
	for _, f := range fs.Args() {
		items = append(items, orders.StockItem{File: f})
	}

	if cfg.LedgerBackend == config.BackendPostgres {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		if _, err := (&postgres.StockRepo{DB: db}).Seed(ctx, []string{*sku}, map[string][]orders.StockItem{*sku: items}); err != nil {
			return err
		}
	} else if err := ledger.NewStockLedger(ledger.NewFileDocument(cfg.StockFile)).Add(ctx, *sku, items...); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "added %d items to %s\n", len(items), *sku)
	return err
}

func count(ctx context.Context, cfg config.Config, out io.Writer) error {
	var stock orders.StockLedger
	if cfg.LedgerBackend == config.BackendPostgres {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		stock = &postgres.StockRepo{DB: db}
	} else {
		stock = ledger.NewStockLedger(ledger.NewFileDocument(cfg.StockFile))
	}

	counts, err := stock.Counts(ctx)
	if err != nil {
		return err
	}
	// every catalog SKU shows up, even with nothing left
	for _, sku := range catalog.Default().SKUs() {
		if _, ok := counts[sku]; !ok {
			counts[sku] = 0
		}
	}
	skus := make([]string, 0, len(counts))
	for sku := range counts {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tREMAINING")
	for _, sku := range skus {
		fmt.Fprintf(tw, "%s\t%d\n", sku, counts[sku])
	}
	return tw.Flush()
}
