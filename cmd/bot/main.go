package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bot-mercado/config"
	"bot-mercado/internal/api"
	"bot-mercado/internal/bot"
	"bot-mercado/internal/database"
	"bot-mercado/internal/logger"
	"bot-mercado/internal/metrics"
	"bot-mercado/internal/monitor"
	"bot-mercado/internal/scraper"
	"bot-mercado/internal/service"
)

func main() {
	// Carregar variáveis de ambiente
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "bot-mercado"})
	if err != nil {
		stdlog.Fatalf("Erro ao inicializar logger: %v", err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Info("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath, log)
	if err != nil {
		log.Fatal("Erro ao inicializar banco de dados", zap.Error(err))
	}
	defer db.Close()

	svc := service.New(db, db, db, db, service.Options{
		FreshnessWindow: cfg.FreshnessWindow,
		HistoryDays:     cfg.HistoryDays,
		Retention:       cfg.OfferRetention,
	})
	m := metrics.New()

	// Bot do Telegram é opcional; sem token os alertas só vão para o log
	var (
		telegram *tgbotapi.BotAPI
		notifier monitor.Notifier
	)
	if cfg.TelegramBotToken != "" {
		telegram, err = bot.Init(cfg.TelegramBotToken, log)
		if err != nil {
			log.Fatal("Erro ao inicializar bot do Telegram", zap.Error(err))
		}
		notifier = bot.NewNotifier(telegram, log)
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN não configurado, bot desativado")
	}

	g, gctx := errgroup.WithContext(ctx)

	// Iniciar monitoramento em background
	mon := monitor.New(svc, db, scraper.NewRegistry(), notifier, m, log, cfg.CheckInterval)
	g.Go(func() error {
		mon.Start(gctx)
		return nil
	})

	if telegram != nil {
		b := bot.New(telegram, svc, log, bot.Options{
			DefaultCityID:    cfg.DefaultCityID,
			AuthorizedChatID: cfg.TelegramChatID,
			Metrics:          m,
		})
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := telegram.GetUpdatesChan(u)
		g.Go(func() error {
			b.Run(gctx, updates)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			telegram.StopReceivingUpdates()
			return nil
		})
	}

	if cfg.HTTPAddr != "" {
		if cfg.Environment == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(svc, m, log, cfg.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Info("API HTTP iniciada", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// Aguardar sinal de interrupção ou falha de um dos componentes
	<-gctx.Done()
	log.Info("Encerrando...")

	if err := g.Wait(); err != nil {
		log.Error("Erro ao encerrar", zap.Error(err))
	}
}
