package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"mini-mart/internal/bot"
	"mini-mart/internal/config"
	"mini-mart/internal/database"
	custommiddleware "mini-mart/internal/middleware"
	"mini-mart/internal/notify"
	"mini-mart/internal/transport"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dispatcherDrainTimeout = 10 * time.Second

type Server struct {
	*http.Server
	config     *config.Config
	logger     *zap.Logger
	db         *sql.DB
	redis      *redis.Client
	dispatcher *notify.Dispatcher
	services   *Services
}

// NewServer wires the HTTP API. redisClient and botAPI are optional: without
// Redis requests are not rate limited; without a bot, notifications are
// discarded and ONLINE checkout and the webhook are disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, botAPI *tgbotapi.BotAPI) *Server {
	var messenger notify.Messenger = notify.NopMessenger{}
	if botAPI != nil {
		messenger = notify.NewTelegramMessenger(botAPI)
	}
	dispatcher := notify.NewDispatcher(messenger, notify.Config{
		QueueSize:   cfg.Notify.QueueSize,
		SendTimeout: cfg.Notify.SendTimeout,
		ChannelID:   cfg.Telegram.ChannelID,
		WebAppURL:   cfg.Server.WebAppURL,
		Currency:    cfg.Payment.Currency,
	}, logger.Named("notify"))
	dispatcher.Start()

	services := NewServices(cfg, db, botAPI, dispatcher, logger)

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.WebAppURL, !cfg.IsProduction()))

	orderLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:order",
	}, logger)
	loginLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:login",
	}, logger)

	transport.NewHealthHandler("mini-mart", func(ctx context.Context) map[string]string {
		return database.Health(ctx, db)
	}).RegisterRoutes(router)
	transport.NewShopHandler(services.Catalog, services.Orders, logger).RegisterRoutes(router)
	transport.NewOrderHandler(services.Orders, logger).RegisterRoutes(router,
		orderLimit,
		custommiddleware.RequireBotKey(cfg.Telegram.BotAPIKey, logger),
	)
	transport.NewProfileHandler(services.Profiles, logger).RegisterRoutes(router)
	transport.NewAdminHandler(services.Admins, services.Catalog, services.Orders, services.Profiles, logger).RegisterRoutes(router,
		loginLimit,
		custommiddleware.AdminAuthMiddleware(services.Admins, cfg.Admin.Password, logger),
	)

	if botAPI != nil {
		updates := bot.NewHandler(botAPI, services.Orders, services.Profiles, BotConfig(cfg), logger.Named("bot"))
		transport.NewWebhookHandler(updates, cfg.Telegram.WebhookSecret, logger).RegisterRoutes(router)
	}

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		dispatcher: dispatcher,
		services:   services,
	}
}

// Services exposes the wired services for boot tasks such as seeding the default admin.
func (s *Server) Services() *Services {
	return s.services
}

// BotConfig derives the bot settings from the application config.
func BotConfig(cfg *config.Config) bot.Config {
	return bot.Config{
		ShopName:      cfg.Payment.ShopName,
		WebAppURL:     cfg.Server.WebAppURL,
		OwnerID:       cfg.Telegram.OwnerChatID(),
		ChannelID:     cfg.Telegram.ChannelID,
		SupportHandle: cfg.Telegram.SupportHandle,
		Currency:      cfg.Payment.Currency,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Deliver queued notifications before the process exits
	ctx, cancel := context.WithTimeout(context.Background(), dispatcherDrainTimeout)
	defer cancel()
	if err := s.dispatcher.Close(ctx); err != nil {
		s.logger.Warn("Notification queue not fully drained", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
