package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config define nível e formato dos logs
type Config struct {
	Level       string
	Environment string
	ServiceName string
}

// New cria o logger. Em produção usa JSON, fora dela saída colorida para o terminal.
func New(cfg Config) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)
	fields := zap.Fields(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	)

	if cfg.Environment == "production" {
		prod := zap.NewProductionConfig()
		prod.Level = zap.NewAtomicLevelAt(level)
		prod.EncoderConfig.TimeKey = "timestamp"
		prod.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return prod.Build(fields)
	}

	dev := zap.NewDevelopmentConfig()
	dev.Level = zap.NewAtomicLevelAt(level)
	dev.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return dev.Build(fields)
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
