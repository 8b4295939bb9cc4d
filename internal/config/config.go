package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageDatabase = "database"
	StorageFile     = "file"
)

// Config holds all configuration for the application
type Config struct {
	// Persistence
	DatabaseURL    string
	StorageBackend string
	DataDir        string

	// Server
	APIPort int

	// Logging
	LogLevel string

	// Security
	AllowedOrigins string
	AppEnv         string
	SessionTTL     time.Duration

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int

	// Email handoff
	SMTPHost         string
	SMTPPort         int
	SMTPFrom         string
	HandoffEnabled   bool
	HandoffQueueSize int
	MailSinkAddr     string

	// Text assistance
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// DATABASE_URL (default: embedded SQLite file)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", "sqlite://sjajred.db")

	cfg.StorageBackend = strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageDatabase))
	cfg.DataDir = getEnvOrDefault("DATA_DIR", "./data")

	if cfg.APIPort, err = getEnvInt("API_PORT", 8080); err != nil {
		return nil, err
	}

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = getEnvOrDefault("APP_ENV", "development")

	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 720*time.Hour); err != nil {
		return nil, err
	}

	// Rate limiting configuration
	cfg.RateLimitRequests = 10.0
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	}
	cfg.RateLimitBurst = 20
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	}

	// Email handoff
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 25); err != nil {
		return nil, err
	}
	cfg.SMTPFrom = getEnvOrDefault("SMTP_FROM", "noreply@sjajred.hr")
	if cfg.HandoffEnabled, err = getEnvBool("HANDOFF_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.HandoffQueueSize, err = getEnvInt("HANDOFF_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	cfg.MailSinkAddr = os.Getenv("MAIL_SINK_ADDR")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview")

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageDatabase:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DatabaseURL cannot be empty")
		}
	case StorageFile:
		if c.DataDir == "" {
			return fmt.Errorf("DataDir cannot be empty")
		}
	default:
		return fmt.Errorf("StorageBackend must be %q or %q", StorageDatabase, StorageFile)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.HandoffQueueSize <= 0 {
		return fmt.Errorf("HandoffQueueSize must be positive")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SessionTTL cannot be negative")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if c.StorageBackend == StorageDatabase && strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	if c.MailSinkAddr != "" {
		return fmt.Errorf("MAIL_SINK_ADDR is a development tool and cannot be used in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("storage_backend", c.StorageBackend),
		slog.String("data_dir", c.DataDir),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Duration("session_ttl", c.SessionTTL),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
		slog.Bool("handoff_enabled", c.HandoffEnabled),
		slog.Bool("smtp_host_set", c.SMTPHost != ""),
		slog.Bool("mail_sink_enabled", c.MailSinkAddr != ""),
		slog.Bool("gemini_key_set", c.GeminiAPIKey != ""),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
