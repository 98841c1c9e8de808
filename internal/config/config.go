package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Email          EmailConfig
	AdminBootstrap AdminBootstrapConfig
	Logging        LoggingConfig
	Environment    string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MinIdle        int
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	Issuer    string
}

// RateLimitConfig carries per-tier request budgets. A zero value disables
// the tier's limiter entirely.
type RateLimitConfig struct {
	GeneralPer15Minutes int
	SubmitPerHour       int
	LoginPer15Minutes   int
	DownloadPerMinute   int
	TrustedProxyCIDRs   []string
}

type CORSConfig struct {
	AllowedOrigins  []string
	AllowAllOrigins bool
}

// EmailConfig selects the outbound mail provider. Provider is one of
// "resend", "smtp", or "disabled"; disabled sends are logged and dropped.
type EmailConfig struct {
	Provider     string
	From         string
	AdminAddress string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

type AdminBootstrapConfig struct {
	Email    string
	Password string
	Name     string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	env := getEnv("ENVIRONMENT", "development")

	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			MinIdle:        getEnvInt("DATABASE_MIN_IDLE_CONNECTIONS", 2),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 168)) * time.Hour,
			Issuer:    getEnv("JWT_ISSUER", "buildercircle"),
		},
		RateLimit: RateLimitConfig{
			GeneralPer15Minutes: getEnvInt("RATE_LIMIT_GENERAL", 100),
			SubmitPerHour:       getEnvInt("RATE_LIMIT_SUBMIT", 5),
			LoginPer15Minutes:   getEnvInt("RATE_LIMIT_LOGIN", 10),
			DownloadPerMinute:   getEnvInt("RATE_LIMIT_DOWNLOAD", 30),
			TrustedProxyCIDRs:   getEnvList("TRUSTED_PROXY_CIDRS"),
		},
		CORS: CORSConfig{
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
			AllowAllOrigins: env == "development" || env == "test",
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "disabled"),
			From:         getEnv("EMAIL_FROM", ""),
			AdminAddress: getEnv("EMAIL_ADMIN_ADDRESS", ""),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: env,
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.Email.Provider {
	case "disabled":
	case "resend":
		if cfg.Email.ResendAPIKey == "" {
			return Config{}, fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
		if cfg.Email.From == "" {
			return Config{}, fmt.Errorf("EMAIL_FROM is required when email is enabled")
		}
	case "smtp":
		if cfg.Email.SMTPHost == "" {
			return Config{}, fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER=smtp")
		}
		if cfg.Email.From == "" {
			return Config{}, fmt.Errorf("EMAIL_FROM is required when email is enabled")
		}
	default:
		return Config{}, fmt.Errorf("EMAIL_PROVIDER must be one of: disabled, resend, smtp")
	}
	if env == "production" && len(cfg.CORS.AllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
