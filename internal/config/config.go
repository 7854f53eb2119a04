package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Telegram  TelegramConfig
	Payment   PaymentConfig
	Notify    NotifyConfig
	InitData  InitDataConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	WebAppURL      string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the DB_* parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type JWTConfig struct {
	Secret         string
	SessionTTLDays int
}

type AdminConfig struct {
	Email    string
	Password string
}

type TelegramConfig struct {
	BotToken      string
	ChannelID     string
	OwnerID       string
	BotAPIKey     string
	ProviderToken string
	SupportHandle string
	WebhookSecret string
}

// OwnerChatID parses OWNER_ID; zero means no owner is configured.
func (c TelegramConfig) OwnerChatID() int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(c.OwnerID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type PaymentConfig struct {
	Currency string
	UPIPayee string
	UPIName  string
	ShopName string
}

type NotifyConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

type InitDataConfig struct {
	// MaxAge of auth_date accepted by the verifier; zero disables the check.
	MaxAge time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// OnlinePaymentsEnabled reports whether a payment-provider credential is configured.
func (c *Config) OnlinePaymentsEnabled() bool {
	return c.Telegram.ProviderToken != "" && c.Telegram.BotToken != ""
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("WEBAPP_URL", "https://telegram-mini-mart.vercel.app/")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 30)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("SESSION_TTL_DAYS", 7)
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("UPI_PAYEE", "yourupi@okbank")
	viper.SetDefault("UPI_NAME", "South Asia Mart")
	viper.SetDefault("SHOP_NAME", "South Asia Mart")
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFY_SEND_TIMEOUT", "10s")
	viper.SetDefault("INIT_DATA_MAX_AGE", "0s")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			WebAppURL:      viper.GetString("WEBAPP_URL"),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("JWT_SECRET"),
			SessionTTLDays: viper.GetInt("SESSION_TTL_DAYS"),
		},
		Admin: AdminConfig{
			Email:    strings.TrimSpace(viper.GetString("ADMIN_EMAIL")),
			Password: strings.TrimSpace(viper.GetString("ADMIN_PASSWORD")),
		},
		Telegram: TelegramConfig{
			BotToken:      viper.GetString("BOT_TOKEN"),
			ChannelID:     viper.GetString("CHANNEL_ID"),
			OwnerID:       viper.GetString("OWNER_ID"),
			BotAPIKey:     viper.GetString("BOT_API_KEY"),
			ProviderToken: viper.GetString("PROVIDER_TOKEN"),
			SupportHandle: viper.GetString("SUPPORT_HANDLE"),
			WebhookSecret: viper.GetString("TELEGRAM_WEBHOOK_SECRET"),
		},
		Payment: PaymentConfig{
			Currency: viper.GetString("CURRENCY"),
			UPIPayee: viper.GetString("UPI_PAYEE"),
			UPIName:  viper.GetString("UPI_NAME"),
			ShopName: viper.GetString("SHOP_NAME"),
		},
		Notify: NotifyConfig{
			QueueSize:   viper.GetInt("NOTIFY_QUEUE_SIZE"),
			SendTimeout: viper.GetDuration("NOTIFY_SEND_TIMEOUT"),
		},
		InitData: InitDataConfig{
			MaxAge: viper.GetDuration("INIT_DATA_MAX_AGE"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
