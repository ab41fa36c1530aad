package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Notify    NotifyConfig
	Sheets    SheetsConfig
	Lembretes LembretesConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NotifyConfig points at the webhook endpoint used for reminders and
// password-reset delivery. An empty URL disables outbound notifications.
type NotifyConfig struct {
	WebhookURL string
	Token      string
}

// SheetsConfig contains configuration required to export the herd to Google
// Sheets. Empty credentials disable the export feature.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// LembretesConfig holds the reminder scheduler settings.
type LembretesConfig struct {
	CronSchedule  string
	Timezone      string
	HorizonteDias int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	ttl, err := time.ParseDuration(getenvWithDefault("AUTH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}

	horizonte, err := strconv.Atoi(getenvWithDefault("LEMBRETES_HORIZONTE_DIAS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEMBRETES_HORIZONTE_DIAS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "rebanho"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			TokenTTL:  ttl,
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Token:      os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Lembretes: LembretesConfig{
			CronSchedule:  getenvWithDefault("LEMBRETES_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:      getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
			HorizonteDias: horizonte,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}

	if c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_EXPORT_ID must be provided when sheets credentials are set")
	}

	if c.Lembretes.CronSchedule == "" {
		return errors.New("LEMBRETES_CRON_SCHEDULE must be provided")
	}

	if c.Lembretes.HorizonteDias <= 0 {
		return errors.New("LEMBRETES_HORIZONTE_DIAS must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
