package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ariefcatur/go-esim-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-esim-storefront/internal/kafka"
	"github.com/ariefcatur/go-esim-storefront/internal/logging"
	"github.com/ariefcatur/go-esim-storefront/internal/notify"
	"github.com/ariefcatur/go-esim-storefront/internal/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultWorkers = 4

// workerCount parses NOTIFIER_WORKERS, falling back to defaultWorkers when it
// is unset or not a positive integer.
func workerCount(raw string, log *zap.Logger) int {
	if raw == "" {
		return defaultWorkers
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Warn("notifier_workers_invalid",
			zap.String("value", raw),
			zap.Int("using", defaultWorkers),
		)
		return defaultWorkers
	}
	return n
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.MustNewLogger(cfg.ServiceName+"-notifier", cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatal("config_invalid", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("telegram_connect_failed", zap.Error(err))
	}
	op := notify.NewOperator(telegram.NewChannel(api), cfg.AdminID, log)

	workers := workerCount(os.Getenv("NOTIFIER_WORKERS"), log)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, cfg.KafkaTopicEvents, workers, log)

	go func() {
		log.Info("notifier_started",
			zap.String("group", cfg.NotifierGroup),
			zap.String("topic", cfg.KafkaTopicEvents),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, kafkax.Envelopes(op.Handle, log)); err != nil {
			log.Error("consumer_exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting_down")
	cancel()
}
