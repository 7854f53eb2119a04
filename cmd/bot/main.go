package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"mini-mart/internal/bot"
	"mini-mart/internal/config"
	"mini-mart/internal/database"
	"mini-mart/internal/logger"
	"mini-mart/internal/server"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel, "bot")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.Telegram.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal("Failed to authorize bot", zap.Error(err))
	}
	log.Info("Authorized Telegram bot", zap.String("username", api.Self.UserName))

	// Long polling and a webhook cannot both receive updates
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("Failed to delete webhook", zap.Error(err))
	}

	services := server.NewServices(cfg, db, api, nil, log)
	handler := bot.NewHandler(api, services.Orders, services.Profiles, server.BotConfig(cfg), log)

	bot.Poll(ctx, api, handler, log)
	log.Info("Bot stopped")
}
