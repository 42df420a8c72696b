package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string `mapstructure:"DB_DSN"`
	Environment string `mapstructure:"ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
	JWTIssuer string `mapstructure:"JWT_ISSUER"`

	// Уведомления модераторов, опционально
	TelegramToken       string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramAuditChatID int64  `mapstructure:"TELEGRAM_AUDIT_CHAT_ID"`

	PromotionRequireEligibility bool `mapstructure:"PROMOTION_REQUIRE_ELIGIBILITY"`
	MigrationsEnabled           bool `mapstructure:"MIGRATIONS_ENABLED"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:         getenv("DB_DSN"),
		Environment:   getenv("ENV"),
		HTTPAddr:      getenv("HTTP_ADDR"),
		LogLevel:      getenv("LOG_LEVEL"),
		JWTSecret:     getenv("JWT_SECRET"),
		JWTIssuer:     getenv("JWT_ISSUER"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	var err error
	if cfg.PromotionRequireEligibility, err = parseBool(getenv, "PROMOTION_REQUIRE_ELIGIBILITY", false); err != nil {
		return nil, err
	}
	if cfg.MigrationsEnabled, err = parseBool(getenv, "MIGRATIONS_ENABLED", true); err != nil {
		return nil, err
	}

	if raw := getenv("TELEGRAM_AUDIT_CHAT_ID"); raw != "" {
		cfg.TelegramAuditChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_AUDIT_CHAT_ID must be an integer: %w", err)
		}
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.TelegramToken != "" && cfg.TelegramAuditChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_AUDIT_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// TelegramAuditEnabled reports whether moderator notifications are configured.
func (c *Config) TelegramAuditEnabled() bool {
	return c.TelegramToken != "" && c.TelegramAuditChatID != 0
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
