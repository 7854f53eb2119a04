package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mini-mart/internal/config"
	"mini-mart/internal/database"
	"mini-mart/internal/logger"
	"mini-mart/internal/server"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drains notifications, then closes redis and the database
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// connectRedis returns nil when REDIS_ADDR is unset or unreachable; rate limiting is then off.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		client.Close()
		return nil
	}
	return client
}

// connectBot returns nil when BOT_TOKEN is unset or rejected; notifications,
// ONLINE checkout and the webhook are then off.
func connectBot(token string, log *zap.Logger) *tgbotapi.BotAPI {
	if token == "" {
		log.Warn("BOT_TOKEN not set, Telegram features disabled")
		return nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Warn("Telegram bot unavailable", zap.Error(err))
		return nil
	}
	log.Info("Authorized Telegram bot", zap.String("username", api.Self.UserName))
	return api
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel, "api")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting mini-mart API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.Bool("online_payments", cfg.OnlinePaymentsEnabled()),
	)

	ctx := context.Background()

	// Initialize database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", database.Health(ctx, db)))

	// Run migrations
	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	redisClient := connectRedis(ctx, cfg.Redis, log)
	botAPI := connectBot(cfg.Telegram.BotToken, log)

	// Create server
	srv := server.NewServer(cfg, log, db, redisClient, botAPI)

	created, err := srv.Services().Admins.EnsureDefaultAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Error("Failed to ensure default admin", zap.Error(err))
	} else if created {
		log.Info("Default admin created", zap.String("email", cfg.Admin.Email))
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
