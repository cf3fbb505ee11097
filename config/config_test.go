package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATABASE_PATH", "HTTP_ADDR",
		"CHECK_INTERVAL_MINUTES", "HISTORY_DAYS", "FRESHNESS_WINDOW_DAYS", "OFFER_RETENTION_DAYS",
		"DEFAULT_CITY_ID", "LOG_LEVEL", "ENVIRONMENT"} {
		t.Setenv(k, "")
	}
	// t.Setenv com "" ainda conta como definido para LookupEnv
	t.Setenv("DATABASE_PATH", "./mercado.db")
	t.Setenv("HTTP_ADDR", ":8080")

	cfg := Load()
	assert.Empty(t, cfg.TelegramBotToken)
	assert.Equal(t, int64(0), cfg.TelegramChatID)
	assert.Equal(t, "./mercado.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.FreshnessWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.OfferRetention)
	assert.Equal(t, 30, cfg.HistoryDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CHECK_INTERVAL_MINUTES", "5")
	t.Setenv("FRESHNESS_WINDOW_DAYS", "3")
	t.Setenv("HISTORY_DAYS", "-1")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DEFAULT_CITY_ID", "recife")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://mercado.example,")

	cfg := Load()
	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 3*24*time.Hour, cfg.FreshnessWindow)
	assert.Equal(t, 30, cfg.HistoryDays, "invalid value keeps default")
	assert.Empty(t, cfg.HTTPAddr, "empty HTTP_ADDR disables the API")
	assert.Equal(t, "recife", cfg.DefaultCityID)
	assert.Equal(t, []string{"http://localhost:3000", "https://mercado.example"}, cfg.CORSOrigins)
}
