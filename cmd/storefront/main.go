package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/catalog"
	"github.com/ariefcatur/go-esim-storefront/internal/config"
	"github.com/ariefcatur/go-esim-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-esim-storefront/internal/kafka"
	"github.com/ariefcatur/go-esim-storefront/internal/ledger"
	"github.com/ariefcatur/go-esim-storefront/internal/logging"
	"github.com/ariefcatur/go-esim-storefront/internal/mercadopago"
	"github.com/ariefcatur/go-esim-storefront/internal/metrics"
	"github.com/ariefcatur/go-esim-storefront/internal/notify"
	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/ariefcatur/go-esim-storefront/internal/postgres"
	"github.com/ariefcatur/go-esim-storefront/internal/redisx"
	"github.com/ariefcatur/go-esim-storefront/internal/telegram"
	"github.com/ariefcatur/go-esim-storefront/internal/telemetry"
	"github.com/ariefcatur/go-esim-storefront/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("config_invalid", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint, cfg.OTLPInsecure)
	if err != nil {
		log.Fatal("tracing_setup_failed", zap.Error(err))
	}

	// Ledgers
	var (
		stock orders.StockLedger
		ords  orders.OrderLedger
	)
	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("db_connect_failed", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatal("db_schema_failed", zap.Error(err))
		}
		stock = &postgres.StockRepo{DB: db}
		ords = &postgres.OrderRepo{DB: db}
	default:
		stock = ledger.NewStockLedger(ledger.NewFileDocument(cfg.StockFile))
		ords = ledger.NewOrderLedger(ledger.NewFileDocument(cfg.OrdersFile))
	}

	// Telegram
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("telegram_connect_failed", zap.Error(err))
	}
	channel := telegram.NewChannel(api)

	// Events: Kafka when brokers are configured, otherwise straight to the operator.
	var publisher orders.Publisher = notify.NewOperator(channel, cfg.AdminID, log)
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicEvents, 1024, log)
		prod.Start(ctx)
		publisher = prod
	}

	// Redis dedup (optional)
	var dedup workflow.Deduper
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis_unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		dedup = redisx.NewDeduper(rdb)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cat := catalog.Default()
	svc := workflow.New(workflow.Deps{
		Catalog: cat,
		Orders:  ords,
		Stock:   stock,
		Gateway: mercadopago.New(cfg.MPAPIURL, cfg.MPAccessToken,
			mercadopago.WithCurrency(cfg.Currency),
			mercadopago.WithBackURL(cfg.BackURL),
		),
		Delivery:   channel,
		Publisher:  publisher,
		Dedup:      dedup,
		WebhookURL: cfg.WebhookURL(),
		AssetDir:   cfg.AssetDir,
		Producer:   cfg.ServiceName,
		Logger:     log,
		Metrics:    metrics.New(reg),
	})

	// Bot
	bot := telegram.NewBot(api, svc, cat, log)
	updates := api.GetUpdatesChan(tgbotapi.NewUpdate(0))
	go bot.Run(ctx, updates)
	log.Info("bot_started", zap.String("username", api.Self.UserName))

	// HTTP server
	router := httpx.NewRouter(log, reg)
	(&httpx.WebhookHandler{Workflow: svc}).Register(router)
	srv := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http_listening", zap.String("addr", cfg.Addr()), zap.String("webhook", cfg.WebhookURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http_listen_failed", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting_down")

	api.StopReceivingUpdates()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	if prod != nil {
		prod.Close()      // close inbox, flush, close writer
		prod.WaitClosed() // drain
	}
	_ = shutdownTracing(ctx2)
}
