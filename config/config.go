package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"` // access token lifetime
	Issuer string        `mapstructure:"issuer"`
}

// WalletConfig holds the transfer and pagination policy.
type WalletConfig struct {
	Currency              string        `mapstructure:"currency"`
	InitialBalance        string        `mapstructure:"initial_balance"` // decimal string, applied at provisioning
	SimilarTransferWindow time.Duration `mapstructure:"similar_transfer_window"`
	DefaultPageSize       int           `mapstructure:"default_page_size"`
	MaxPageSize           int           `mapstructure:"max_page_size"`
}

// StartingBalance parses InitialBalance. An empty value means zero.
func (w WalletConfig) StartingBalance() (decimal.Decimal, error) {
	if strings.TrimSpace(w.InitialBalance) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(w.InitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing wallet.initial_balance: %w", err)
	}
	return d, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// MinSimilarWindow is the minimum gap allowed between two identical transfers.
// A token that expires sooner than the configured window caps it.
func (c *Config) MinSimilarWindow() time.Duration {
	window := c.Wallet.SimilarTransferWindow
	if c.JWT.Expiry > 0 && c.JWT.Expiry < window {
		return c.JWT.Expiry
	}
	return window
}

// LoadDotEnv exports the variables of a .env file into the process
// environment so Load picks them up. Variables already set win, and a missing
// file is not an error. An empty path means ".env".
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CWL_ (Coins WaLlet).
// Nested keys use underscore: CWL_DATABASE_HOST, CWL_WALLET_MAX_PAGE_SIZE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "coins_wallet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "10h")
	v.SetDefault("jwt.issuer", "coins-wallet")
	v.SetDefault("wallet.currency", "PHP")
	v.SetDefault("wallet.initial_balance", "0")
	v.SetDefault("wallet.similar_transfer_window", "10m")
	v.SetDefault("wallet.default_page_size", 10)
	v.SetDefault("wallet.max_page_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CWL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Wallet.MaxPageSize < 1 {
		return fmt.Errorf("wallet.max_page_size must be positive")
	}
	if c.Wallet.DefaultPageSize < 1 || c.Wallet.DefaultPageSize > c.Wallet.MaxPageSize {
		return fmt.Errorf("wallet.default_page_size must be between 1 and %d", c.Wallet.MaxPageSize)
	}
	if c.Wallet.SimilarTransferWindow < 0 {
		return fmt.Errorf("wallet.similar_transfer_window must not be negative")
	}
	if _, err := c.Wallet.StartingBalance(); err != nil {
		return err
	}
	return nil
}
