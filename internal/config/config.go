// Package config loads server and historian settings from an optional YAML file and
// HANAMIKOJI_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HANAMIKOJI_SERVER_PORT.
const EnvPrefix = "HANAMIKOJI"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Log       LogConfig         `mapstructure:"log"`
	Store     StoreConfig       `mapstructure:"store"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Postgres  PostgresConfig    `mapstructure:"postgres"`
	Catalog   CatalogConfig     `mapstructure:"catalog"`
	Auth      AuthConfig        `mapstructure:"auth"`
	Historian HistorianConfig   `mapstructure:"historian"`
	Rules     models.HouseRules `mapstructure:"rules"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr string        `mapstructure:"addr"`
	DB   int           `mapstructure:"db"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type CatalogConfig struct {
	// Path to a catalog JSON file; empty uses the embedded default.
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	// KeyPath is a raw ed25519 private key. Empty generates a key per process, which
	// invalidates issued tokens on restart.
	KeyPath  string        `mapstructure:"key_path"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type HistorianConfig struct {
	// Publish makes the server push log records onto Queue.
	Publish       bool          `mapstructure:"publish"`
	Queue         string        `mapstructure:"queue"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("postgres.url", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("auth.key_path", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("historian.publish", false)
	v.SetDefault("historian.queue", "hanamikoji_actions")
	v.SetDefault("historian.batch_size", 100)
	v.SetDefault("historian.flush_interval", 5*time.Second)

	rules := game.DefaultHouseRules()
	v.SetDefault("rules.handsize", rules.HandSize)
	v.SetDefault("rules.geishamajority", rules.GeishaMajority)
	v.SetDefault("rules.charmthreshold", rules.CharmThreshold)
	v.SetDefault("rules.singlegeishaoffers", rules.SingleGeishaOffers)
	v.SetDefault("rules.draweachturn", rules.DrawEachTurn)
	v.SetDefault("rules.retainfavorontie", rules.RetainFavorOnTie)
}

// Load reads configuration. An empty path skips the file and uses defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("store.backend is postgres but postgres.url is empty")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Historian.BatchSize < 1 {
		return fmt.Errorf("historian.batch_size must be positive")
	}
	if c.Historian.FlushInterval <= 0 {
		return fmt.Errorf("historian.flush_interval must be positive")
	}
	if err := game.ValidateRules(c.Rules); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}
