package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the runtime configuration of the service.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logs    LogsConfig    `mapstructure:"logs"`
	Store   StoreConfig   `mapstructure:"store"`
	Sweep   SweepConfig   `mapstructure:"sweep"`
	Consent ConsentConfig `mapstructure:"consent"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogsConfig configures logging.
type LogsConfig struct {
	Level       string `mapstructure:"level"`
	BufferSize  int    `mapstructure:"buffer_size"`
	Development bool   `mapstructure:"development"`
}

// StoreConfig selects and configures the preference store backend.
type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Redis   RedisConfig  `mapstructure:"redis"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

// RedisConfig holds Redis connection options.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// SQLiteConfig holds the database location.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// SweepConfig controls the scheduled expiry sweep.
type SweepConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Schedule   string   `mapstructure:"schedule"`
	OnStart    bool     `mapstructure:"on_start"`
	Namespaces []string `mapstructure:"namespaces"`
}

// ConsentConfig configures ad-configuration detection.
type ConsentConfig struct {
	// RequiredVendors is the vendor bit pattern that must be satisfied.
	RequiredVendors string `mapstructure:"required_vendors"`
}

// Load reads config.yaml from ./config and any extra paths, then applies
// CONSENT_* environment overrides (e.g. CONSENT_STORE_BACKEND).
// A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("CONSENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.buffer_size", 1000)
	v.SetDefault("logs.development", false)

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.redis.url", "redis://127.0.0.1:6379/0")
	v.SetDefault("store.redis.pool_size", 10)
	v.SetDefault("store.redis.dial_timeout", 5*time.Second)
	v.SetDefault("store.redis.read_timeout", 3*time.Second)
	v.SetDefault("store.redis.write_timeout", 3*time.Second)
	v.SetDefault("store.redis.key_prefix", "prefs:")
	v.SetDefault("store.sqlite.path", "./data/preferences.sqlite")

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "@daily")
	v.SetDefault("sweep.on_start", true)
	v.SetDefault("sweep.namespaces", []string{"default"})

	v.SetDefault("consent.required_vendors", "")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}

	if c.Sweep.Enabled && len(c.Sweep.Namespaces) == 0 {
		return errors.New("config: sweep enabled without namespaces")
	}
	return nil
}
