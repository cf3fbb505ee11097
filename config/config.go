package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken     string
	TelegramChatID       int64
	DatabasePath         string
	HTTPAddr             string
	CORSOrigins          []string
	CheckIntervalMinutes int
	CheckInterval        time.Duration
	FreshnessWindow      time.Duration
	HistoryDays          int
	OfferRetention       time.Duration
	DefaultCityID        string
	LogLevel             string
	Environment          string
}

// Load carrega as configurações das variáveis de ambiente.
// Valores numéricos inválidos são ignorados e o padrão é mantido.
func Load() *Config {
	cfg := &Config{
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabasePath:         getEnv("DATABASE_PATH", "./mercado.db"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CheckIntervalMinutes: positiveInt("CHECK_INTERVAL_MINUTES", 30),
		HistoryDays:          positiveInt("HISTORY_DAYS", 30),
		DefaultCityID:        os.Getenv("DEFAULT_CITY_ID"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("ENVIRONMENT", "development"),
	}

	// Chat ID é opcional (restringe o bot a um chat)
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	cfg.CheckInterval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute
	cfg.FreshnessWindow = time.Duration(positiveInt("FRESHNESS_WINDOW_DAYS", 7)) * 24 * time.Hour
	cfg.OfferRetention = time.Duration(positiveInt("OFFER_RETENTION_DAYS", 7)) * 24 * time.Hour

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
