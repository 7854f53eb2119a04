package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"mini-mart/internal/config"
	"mini-mart/internal/database"
	"mini-mart/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "martctl",
		Short:        "Operator tooling for the mini-mart backend",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(webhookCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles what every database-backed command needs.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel, "martctl")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	e.db.Close()
	e.log.Sync()
}
