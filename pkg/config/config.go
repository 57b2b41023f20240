package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends understood by storage.OpenBackend.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendMongo    = "mongo"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	StoreBackend string `mapstructure:"STORE_BACKEND" validate:"required,oneof=file sqlite postgres mysql mongo"`
	DataFile     string `mapstructure:"DATA_FILE" validate:"required_if=StoreBackend file,required_if=StoreBackend sqlite"`
	SnapshotName string `mapstructure:"SNAPSHOT_NAME" validate:"required,max=64"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required_if=StoreBackend postgres,required_if=StoreBackend mysql"`

	MongoURI      string `mapstructure:"MONGO_URI" validate:"required_if=StoreBackend mongo"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE" validate:"required_if=StoreBackend mongo"`

	RedisAddr      string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	WriterLeaseTTL time.Duration `mapstructure:"WRITER_LEASE_TTL" validate:"required"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=1"`

	// CORSOrigins is read from the comma separated CORS_ORIGINS.
	CORSOrigins []string `mapstructure:"-" validate:"min=1,dive,required"`

	SentryDSN string `mapstructure:"SENTRY_DSN" validate:"omitempty,url"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("DATA_FILE", "data/brandlink.json")
	v.SetDefault("SNAPSHOT_NAME", "primary")
	v.SetDefault("WRITER_LEASE_TTL", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("CORS_ORIGINS", "*")

	_ = v.ReadInConfig()

	keys := []string{
		"APP_ENV",
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"STORE_BACKEND",
		"DATA_FILE",
		"SNAPSHOT_NAME",
		"DATABASE_URL",
		"MONGO_URI",
		"MONGO_DATABASE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"WRITER_LEASE_TTL",
		"RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST",
		"CORS_ORIGINS",
		"SENTRY_DSN",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment.
	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
		"WRITER_LEASE_TTL": &c.WriterLeaseTTL,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			c.CORSOrigins = append(c.CORSOrigins, origin)
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

// LeaseEnabled reports whether a redis writer lease should guard the store.
func (c *Config) LeaseEnabled() bool {
	return c.RedisAddr != ""
}
