package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrConfigurationMissing = errors.New("configuration missing")

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	ServiceName string
	Env         string
	Port        string

	BotToken string
	AdminID  int64

	MPAccessToken string
	MPAPIURL      string
	Currency      string
	BaseURL       string
	BackURL       string

	LedgerBackend string
	StockFile     string
	OrdersFile    string
	AssetDir      string
	PostgresDSN   string

	RedisAddr        string
	KafkaBrokers     []string
	KafkaTopicEvents string
	NotifierGroup    string

	OTLPEndpoint string
	OTLPInsecure bool

	// raw ADMIN_ID, kept so Validate can report a bad value
	adminRaw string
}

func Load() Config {
	cfg := Config{
		ServiceName:      getenv("SERVICE_NAME", "esim-storefront"),
		Env:              getenv("ENV", "dev"),
		Port:             getenv("PORT", "3000"),
		BotToken:         getenv("BOT_TOKEN", ""),
		MPAccessToken:    getenv("MP_ACCESS_TOKEN", ""),
		MPAPIURL:         getenv("MP_API_URL", "https://api.mercadopago.com"),
		Currency:         getenv("CURRENCY", "MXN"),
		BaseURL:          strings.TrimRight(getenv("BASE_URL", ""), "/"),
		BackURL:          getenv("BACK_URL", "https://t.me/"),
		LedgerBackend:    strings.ToLower(getenv("LEDGER_BACKEND", BackendFile)),
		StockFile:        getenv("STOCK_FILE", "stock.json"),
		OrdersFile:       getenv("ORDERS_FILE", "orders.json"),
		AssetDir:         getenv("ASSET_DIR", "."),
		PostgresDSN:      getenv("POSTGRES_DSN", ""),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		KafkaBrokers:     splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopicEvents: getenv("KAFKA_TOPIC_EVENTS", "storefront.order.events"),
		NotifierGroup:    getenv("NOTIFIER_GROUP", "storefront-notifier"),
		OTLPEndpoint:     getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:     getenv("OTEL_EXPORTER_OTLP_INSECURE", "true") == "true",
		adminRaw:         getenv("ADMIN_ID", ""),
	}
	if id, err := strconv.ParseInt(cfg.adminRaw, 10, 64); err == nil {
		cfg.AdminID = id
	}
	return cfg
}

// Addr is the listen address derived from PORT.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// WebhookURL is the notification_url handed to the payment provider.
func (c Config) WebhookURL() string {
	if c.BaseURL == "" {
		return ""
	}
	return c.BaseURL + "/payment/webhook"
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.MPAccessToken == "" {
		missing = append(missing, "MP_ACCESS_TOKEN")
	}
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if c.adminRaw == "" {
		missing = append(missing, "ADMIN_ID")
	}
	if c.Port == "" {
		missing = append(missing, "PORT")
	}
	if c.LedgerBackend == BackendPostgres && c.PostgresDSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	if c.AdminID == 0 {
		return fmt.Errorf("%w: ADMIN_ID must be a numeric chat id, got %q", ErrConfigurationMissing, c.adminRaw)
	}
	switch c.LedgerBackend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	return nil
}

// ValidateNotifier checks what the event consumer needs: bot, operator and
// brokers.
func (c Config) ValidateNotifier() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.adminRaw == "" {
		missing = append(missing, "ADMIN_ID")
	}
	if len(c.KafkaBrokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	if c.AdminID == 0 {
		return fmt.Errorf("%w: ADMIN_ID must be a numeric chat id, got %q", ErrConfigurationMissing, c.adminRaw)
	}
	return nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
