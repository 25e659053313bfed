// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	RateLimit      int    `mapstructure:"RATE_LIMIT"`
	AIRateLimit    int    `mapstructure:"AI_RATE_LIMIT"`

	StoreDriver     string `mapstructure:"STORE_DRIVER"`
	StoreNamespace  string `mapstructure:"STORE_NAMESPACE"`
	StoreQuotaBytes int64  `mapstructure:"STORE_QUOTA_BYTES"`
	StoreMaxRetries int    `mapstructure:"STORE_MAX_RETRIES"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	DBSSLMode       string `mapstructure:"DB_SSLMODE"`

	GeminiAPIKey       string        `mapstructure:"GEMINI_API_KEY"`
	AIModel            string        `mapstructure:"AI_MODEL"`
	AIBaseURL          string        `mapstructure:"AI_BASE_URL"`
	AITimeout          time.Duration `mapstructure:"AI_TIMEOUT"`
	AIMaxRetries       int           `mapstructure:"AI_MAX_RETRIES"`
	ModerationFailOpen bool          `mapstructure:"AI_MODERATION_FAIL_OPEN"`
	TracingEnabled     bool          `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string        `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string        `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64       `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		slog.Info("loaded profile-specific configuration", slog.String("file", "config."+env+".yml"))
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "")
	viper.SetDefault("RATE_LIMIT", 300)
	viper.SetDefault("AI_RATE_LIMIT", 20)

	viper.SetDefault("STORE_DRIVER", DriverMemory)
	viper.SetDefault("STORE_NAMESPACE", "socialsphere_")
	viper.SetDefault("STORE_QUOTA_BYTES", 5*1024*1024)
	viper.SetDefault("STORE_MAX_RETRIES", 16)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("SQLITE_PATH", "socialsphere.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "socialsphere")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("AI_MODEL", "gemini-3-flash-preview")
	viper.SetDefault("AI_BASE_URL", "")
	viper.SetDefault("AI_TIMEOUT", "15s")
	viper.SetDefault("AI_MAX_RETRIES", 0)
	viper.SetDefault("AI_MODERATION_FAIL_OPEN", true)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// PostgresDSN builds the connection string for the postgres store driver.
func (c *Config) PostgresDSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store driver")
		}
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.RateLimit < 0 || c.AIRateLimit < 0 {
		return errors.New("RATE_LIMIT and AI_RATE_LIMIT must not be negative")
	}
	if c.StoreQuotaBytes < 0 {
		return errors.New("STORE_QUOTA_BYTES must not be negative")
	}
	if c.StoreMaxRetries < 1 {
		return errors.New("STORE_MAX_RETRIES must be at least 1")
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	if c.AIMaxRetries < 0 {
		return errors.New("AI_MAX_RETRIES must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.StoreDriver == DriverMemory {
			return errors.New("the memory store driver loses all data on restart and is not allowed in production")
		}
		if c.StoreDriver == DriverPostgres && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.GeminiAPIKey == "" {
			slog.Warn("GEMINI_API_KEY is empty in production; AI features will return fallback text")
		}
		if c.ModerationFailOpen {
			slog.Warn("AI_MODERATION_FAIL_OPEN is enabled in production; posts are published when moderation is unavailable")
		}
		if c.AllowedOrigins == "*" {
			slog.Warn("ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
