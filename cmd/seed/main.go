package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bot-mercado/config"
	"bot-mercado/internal/database"
	"bot-mercado/internal/logger"
	"bot-mercado/internal/seed"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed <catalogo.yaml>",
		Short: "Carrega supermercados, produtos e páginas monitoradas no banco",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.Load()
			if dbPath == "" {
				dbPath = cfg.DatabasePath
			}

			log, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "bot-mercado-seed"})
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			catalog, err := seed.Decode(f)
			if err != nil {
				return err
			}

			db, err := database.New(dbPath, log)
			if err != nil {
				return fmt.Errorf("erro ao inicializar banco de dados: %w", err)
			}
			defer db.Close()

			res, err := seed.Apply(cmd.Context(), db, catalog, time.Now().UTC())
			if err != nil {
				return err
			}
			log.Info("Catálogo carregado",
				zap.Int("supermarkets", res.Supermarkets),
				zap.Int("products", res.Products),
				zap.Int("scrape_targets", res.Targets),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "caminho do banco sqlite (padrão: DATABASE_PATH)")
	return cmd
}
