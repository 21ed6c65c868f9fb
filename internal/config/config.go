package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server and the dispatcher.
type Config struct {
	Port      string
	GinMode   string
	PublicURL string
	Timezone  *time.Location

	DummyMode bool
	Database  DatabaseConfig

	JWT         JWTConfig
	CORSOrigins []string
	FreeLimit   FreeLimitConfig
	Admin       AdminConfig

	DispatchSchedule string
	DispatchTimeout  time.Duration

	SendGrid SendGridConfig
	Twilio   TwilioConfig
	Telegram TelegramConfig

	LogDir   string
	LogDebug bool
}

// DatabaseConfig selects and configures the relational store
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	URL        string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig configures bearer tokens
type JWTConfig struct {
	Secret        string
	Expiry        time.Duration
	RefreshExpiry time.Duration
}

// FreeLimitConfig caps how fast non-premium accounts may create reminders
type FreeLimitConfig struct {
	MaxRequests int
	PerSeconds  int
}

// AdminConfig seeds an account on startup when Username is set
type AdminConfig struct {
	Username string
	Password string
	Email    string
}

// SendGridConfig configures the email channel
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// TwilioConfig configures the sms and whatsapp channels
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	FromNumber   string
	WhatsAppFrom string
}

// TelegramConfig configures the push channel
type TelegramConfig struct {
	BotToken string
}

// Load reads the optional env file and then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:3000"),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "")),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", ""),
			User:       getEnv("DB_USER", ""),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", ""),
			Port:       getEnv("DB_PORT", "5432"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "hatirlat.db"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
		},
		DispatchSchedule: getEnv("DISPATCH_SCHEDULE", "@every 1m"),
		SendGrid: SendGridConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_NOTIFICATIONS_FROM_EMAIL", ""),
			FromName:  getEnv("SENDGRID_FROM_NAME", "Hatirlat"),
		},
		Twilio: TwilioConfig{
			AccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:   getEnv("TWILIO_FROM_NUMBER", ""),
			WhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		LogDir: getEnv("LOG_DIR", "logs"),
	}

	var err error
	if cfg.JWT.Expiry, err = parseDuration("JWT_EXPIRY", "24h"); err != nil {
		return cfg, err
	}
	if cfg.JWT.RefreshExpiry, err = parseDuration("JWT_REFRESH_EXPIRY", "168h"); err != nil {
		return cfg, err
	}
	if cfg.DispatchTimeout, err = parseDuration("DISPATCH_TIMEOUT", "30s"); err != nil {
		return cfg, err
	}
	if cfg.FreeLimit.MaxRequests, err = parseInt("FREE_LIMIT_MAX_REQUESTS", 10); err != nil {
		return cfg, err
	}
	if cfg.FreeLimit.PerSeconds, err = parseInt("FREE_LIMIT_PER_SECONDS", 60); err != nil {
		return cfg, err
	}
	if cfg.LogDebug, err = parseBool("LOG_DEBUG", false); err != nil {
		return cfg, err
	}

	tz := getEnv("TIMEZONE", "Local")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	dummy, err := parseBool("DUMMY_MODE", false)
	if err != nil {
		return cfg, err
	}
	cfg.DummyMode = dummy || !cfg.Database.Configured()

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
		if cfg.Database.URL == "" && cfg.Database.Host == "" {
			cfg.Database.Driver = "sqlite"
		}
	}

	if cfg.JWT.Secret == "" {
		if cfg.GinMode == "release" {
			return cfg, fmt.Errorf("JWT_SECRET is required in release mode")
		}
		cfg.JWT.Secret = "hatirlat-dev-secret"
	}

	return cfg, nil
}

// Configured reports whether any database connection setting is present
func (d DatabaseConfig) Configured() bool {
	return d.URL != "" || d.Host != "" || d.Driver == "sqlite"
}

// DSN returns the connection string for the postgres driver
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Addr returns the listen address of the HTTP server
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s format %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
