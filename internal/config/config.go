package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Notify   NotifyConfig
	Invite   InviteConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Environment string // "development", "production", "test"
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type NotifyConfig struct {
	Provider     string // "resend", "smtp", "console"
	FromAddress  string
	FromName     string
	ResendAPIKey string
	// SMTP settings (for Mailpit in local dev)
	SMTPHost string
	SMTPPort int
}

type InviteConfig struct {
	BaseURL    string // Application base URL for invite links
	ExpiryDays int    // Invite lifetime; fixed at creation
	DailyLimit int    // Max invites per inviter per 24h window
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			Environment: getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "roomloop"),
			Password: getEnv("DB_PASSWORD", "roomloop"),
			DBName:   getEnv("DB_NAME", "roomloop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Notify: NotifyConfig{
			Provider:     getEnv("NOTIFY_PROVIDER", "console"),
			FromAddress:  getEnv("NOTIFY_FROM_ADDRESS", "noreply@roomloop.app"),
			FromName:     getEnv("NOTIFY_FROM_NAME", "RoomLoop"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		},
		Invite: InviteConfig{
			BaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),
			ExpiryDays: getEnvInt("INVITE_EXPIRY_DAYS", 7),
			DailyLimit: getEnvInt("INVITE_DAILY_LIMIT", 20),
		},
	}

	if cfg.Invite.ExpiryDays <= 0 {
		return nil, fmt.Errorf("INVITE_EXPIRY_DAYS must be positive, got %d", cfg.Invite.ExpiryDays)
	}
	if cfg.Invite.DailyLimit <= 0 {
		return nil, fmt.Errorf("INVITE_DAILY_LIMIT must be positive, got %d", cfg.Invite.DailyLimit)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
