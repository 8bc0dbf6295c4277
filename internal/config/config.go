package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/database"
)

// Config holds runtime configuration. Each field maps to an environment
// variable of the same name.
type Config struct {
	// Server
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Timezone string `mapstructure:"APP_TIMEZONE"`

	// Database
	DBDriver    string `mapstructure:"DB_DRIVER"` // postgres | sqlite
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBPort      string `mapstructure:"DB_PORT"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Engine
	TxTimeout     time.Duration `mapstructure:"TX_TIMEOUT"`
	TxMaxAttempts int           `mapstructure:"TX_MAX_ATTEMPTS"`

	// Reports
	LowStockThreshold int `mapstructure:"LOW_STOCK_THRESHOLD"`
	ExpiryWindowDays  int `mapstructure:"EXPIRY_WINDOW_DAYS"`
	TopSellingLimit   int `mapstructure:"TOP_SELLING_LIMIT"`

	Plugins []model.PluginConfig `mapstructure:"-"`
}

const devJWTSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DB_DRIVER", database.DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "inventory")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "inventory.db")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)

	v.SetDefault("TX_TIMEOUT", "5s")
	v.SetDefault("TX_MAX_ATTEMPTS", 3)

	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("EXPIRY_WINDOW_DAYS", 30)
	v.SetDefault("TOP_SELLING_LIMIT", 5)
}

// Load reads .env (if present), the environment and an optional config.yaml
// from the working directory or any of dirs. It is called once at startup;
// the result is passed explicitly to whatever needs it.
func Load(dirs ...string) (*Config, error) {
	// Optional .env file for local development, does not fail if missing
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	plugins, err := loadPlugins(v)
	if err != nil {
		return nil, err
	}
	cfg.Plugins = plugins

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPlugins prefers a PLUGINS env var holding a JSON array, then the
// "plugins" list of config.yaml, then the built-in defaults.
func loadPlugins(v *viper.Viper) ([]model.PluginConfig, error) {
	if raw := strings.TrimSpace(v.GetString("PLUGINS")); raw != "" {
		var out []model.PluginConfig
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("parse PLUGINS: %w", err)
		}
		return out, nil
	}
	if v.IsSet("plugins") {
		var out []model.PluginConfig
		if err := v.UnmarshalKey("plugins", &out); err != nil {
			return nil, fmt.Errorf("decode plugins: %w", err)
		}
		return out, nil
	}
	out := make([]model.PluginConfig, len(model.DefaultPlugins))
	copy(out, model.DefaultPlugins)
	return out, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		c.JWTSecret = devJWTSecret
	}
	switch c.DBDriver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", database.DriverPostgres, database.DriverSQLite, c.DBDriver)
	}
	if c.TxTimeout <= 0 {
		return errors.New("TX_TIMEOUT must be positive")
	}
	if c.TxMaxAttempts < 1 {
		return errors.New("TX_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves APP_TIMEZONE. Hosts without tzdata fall back to a fixed
// UTC+7 zone for Asia/Jakarta and UTC for anything else.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc
	}
	if c.Timezone == "Asia/Jakarta" {
		return time.FixedZone("WIB", 7*60*60)
	}
	return time.UTC
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryWindowDays) * 24 * time.Hour
}

// DatabaseOptions derives connection settings for pkg/database.
func (c *Config) DatabaseOptions() database.Options {
	opts := database.Options{Driver: c.DBDriver, LogLevel: logger.Warn}
	if c.IsProduction() {
		opts.LogLevel = logger.Silent
	}
	switch c.DBDriver {
	case database.DriverSQLite:
		opts.DSN = c.SQLitePath
	default:
		opts.DSN = c.DatabaseURL
		if opts.DSN == "" {
			opts.DSN = database.PostgresDSN(c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, "UTC")
		}
	}
	return opts
}
