package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// MinSnapshotCacheSizeMB is the smallest snapshot cache able to hold
// a dashboard snapshot of any size.
const MinSnapshotCacheSizeMB = 64

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsPort int    `toml:"metrics_port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost string `toml:"postgres_host"`
	PostgresPort string `toml:"postgres_port"`
	PostgresDB   string `toml:"postgres_db"`
	PostgresUser string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// records storage backend: "postgres" or "redis"
	RecordsStore string `toml:"records_store"`
	// dashboard
	SnapshotCacheSizeMB int    `toml:"snapshot_cache_size_mb"`
	SnapshotTTLSeconds  int    `toml:"snapshot_ttl_seconds"`
	DefaultTimezone     string `toml:"default_timezone"`
	// login attempts per minute and IP
	LoginRateLimit int `toml:"login_rate_limit"`
}

const (
	RecordsStorePostgres = "postgres"
	RecordsStoreRedis    = "redis"
)

func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// DefaultLocation returns the configured default time zone, UTC if unset.
func (c *Config) DefaultLocation() (*time.Location, error) {
	if c.DefaultTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone [%s]: %w", c.DefaultTimezone, err)
	}
	return loc, nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied for unset values.
func Load(env, path string) (*Config, error) {
	var cfgToml Toml
	if _, err := toml.DecodeFile(path, &cfgToml); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := cfgToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found in [%s]", env, path)
	}

	applyDefaults(cfg)

	if cfg.RecordsStore != RecordsStorePostgres && cfg.RecordsStore != RecordsStoreRedis {
		return nil, fmt.Errorf("unknown records store: %s", cfg.RecordsStore)
	}
	if cfg.SnapshotCacheSizeMB < MinSnapshotCacheSizeMB {
		return nil, fmt.Errorf("snapshot cache size must be at least %d MB, got %d MB",
			MinSnapshotCacheSizeMB, cfg.SnapshotCacheSizeMB)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.MetricsPort == 0 {
		cfg.MetricsPort = 2112
	}
	if cfg.RecordsStore == "" {
		cfg.RecordsStore = RecordsStorePostgres
	}
	if cfg.SnapshotCacheSizeMB <= 0 {
		cfg.SnapshotCacheSizeMB = MinSnapshotCacheSizeMB
	}
	if cfg.SnapshotTTLSeconds <= 0 {
		cfg.SnapshotTTLSeconds = 600
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 5
	}
}
