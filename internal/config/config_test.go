package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MP_ACCESS_TOKEN", "TEST-token")
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("ADMIN_ID", "4242")
}

func TestLoad_DefaultsAndDerived(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "https://shop.example.com/payment/webhook", cfg.WebhookURL())
	assert.Equal(t, int64(4242), cfg.AdminID)
	assert.Equal(t, BackendFile, cfg.LedgerBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "MXN", cfg.Currency)
	assert.Equal(t, "https://t.me/", cfg.BackURL)
}

func TestLoad_BackURLOverride(t *testing.T) {
	t.Setenv("BACK_URL", "https://t.me/esim_shop_bot")
	assert.Equal(t, "https://t.me/esim_shop_bot", Load().BackURL)
}

func TestValidate_ListsEveryMissingKey(t *testing.T) {
	for _, k := range []string{"BOT_TOKEN", "MP_ACCESS_TOKEN", "BASE_URL", "ADMIN_ID"} {
		t.Setenv(k, "")
	}

	err := Load().Validate()
	require.ErrorIs(t, err, ErrConfigurationMissing)
	for _, k := range []string{"BOT_TOKEN", "MP_ACCESS_TOKEN", "BASE_URL", "ADMIN_ID"} {
		assert.Contains(t, err.Error(), k)
	}
}

func TestValidate_RejectsNonNumericAdmin(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_ID", "@operator")

	err := Load().Validate()
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "@operator")
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	setRequired(t)
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	err := Load().Validate()
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestWebhookURL_EmptyWithoutBase(t *testing.T) {
	assert.Empty(t, Config{}.WebhookURL())
}

func TestValidateNotifier(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "7")
	t.Setenv("MP_ACCESS_TOKEN", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	err := Load().ValidateNotifier()
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
	assert.NotContains(t, err.Error(), "MP_ACCESS_TOKEN")

	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	require.NoError(t, Load().ValidateNotifier())
}
