package server

import (
	"database/sql"
	"time"

	"mini-mart/internal/config"
	"mini-mart/internal/initdata"
	"mini-mart/internal/payment"
	"mini-mart/internal/pricing"
	"mini-mart/internal/repository"
	"mini-mart/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Services bundles the application services shared by the API and bot processes.
type Services struct {
	Orders   service.OrderService
	Catalog  service.CatalogService
	Profiles service.ProfileService
	Admins   service.AdminService
}

// NewServices wires repositories, pricing and payments into services. botAPI may
// be nil, which disables ONLINE checkout. notifier may be nil.
func NewServices(cfg *config.Config, db *sql.DB, botAPI *tgbotapi.BotAPI, notifier service.OrderNotifier, logger *zap.Logger) *Services {
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	profiles := repository.NewProfileRepository(db)
	admins := repository.NewAdminRepository(db)

	verifier := initdata.NewVerifier(cfg.Telegram.BotToken, cfg.InitData.MaxAge)

	onlineEnabled := cfg.OnlinePaymentsEnabled() && botAPI != nil
	var invoices payment.InvoiceCreator
	if onlineEnabled {
		invoices = payment.NewTelegramInvoices(botAPI, cfg.Telegram.ProviderToken)
	}

	orderService := service.NewOrderService(
		orders, products, profiles,
		pricing.NewEngine(products, onlineEnabled),
		verifier, invoices, notifier,
		service.OrderServiceConfig{
			ShopName:      cfg.Payment.ShopName,
			Currency:      cfg.Payment.Currency,
			OnlineEnabled: onlineEnabled,
			UPI: payment.UPIConfig{
				PayeeVPA:  cfg.Payment.UPIPayee,
				PayeeName: cfg.Payment.UPIName,
				Currency:  cfg.Payment.Currency,
			},
		},
		logger,
	)

	return &Services{
		Orders:   orderService,
		Catalog:  service.NewCatalogService(products),
		Profiles: service.NewProfileService(profiles, verifier),
		Admins:   service.NewAdminService(admins, cfg.JWT.Secret, time.Duration(cfg.JWT.SessionTTLDays)*24*time.Hour),
	}
}
