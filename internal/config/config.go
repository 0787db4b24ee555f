package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "PLANNER"

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	InternalPort string        `mapstructure:"internal_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// StorageConfig selects the snapshot backend and the keys it writes.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	SnapshotKey   string `mapstructure:"snapshot_key"`
	PreferenceKey string `mapstructure:"preference_key"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// CatalogConfig points at the hero roster file.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LayoutConfig describes which squad positions are front line and the
// divisors applied to self-targeted skills on each line.
type LayoutConfig struct {
	FrontSlots       []int   `mapstructure:"front_slots"`
	FrontSelfDivisor float64 `mapstructure:"front_self_divisor"`
	BackSelfDivisor  float64 `mapstructure:"back_self_divisor"`
}

// CORSConfig contains browser origin settings for the public API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TimeoutsConfig contains various timeout configurations
type TimeoutsConfig struct {
	HTTPMiddleware   time.Duration `mapstructure:"http_middleware"`
	GracefulShutdown time.Duration `mapstructure:"graceful_shutdown"`
	Storage          time.Duration `mapstructure:"storage"`
}

// Load reads config.yaml from the usual locations and overlays PLANNER_* environment variables.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/squad-planner-service")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults + env vars
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit file path plus environment overrides.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("storage.driver", "PLANNER_STORAGE_DRIVER")
	_ = v.BindEnv("database.url", "PLANNER_DATABASE_URL")
	_ = v.BindEnv("redis.url", "PLANNER_REDIS_URL")
	_ = v.BindEnv("server.port", "PLANNER_SERVER_PORT")
	_ = v.BindEnv("server.internal_port", "PLANNER_SERVER_INTERNAL_PORT")
	_ = v.BindEnv("catalog.path", "PLANNER_CATALOG_PATH")

	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.internal_port", "8090")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("logging.level", "info")

	// Storage defaults keep the keys used by the browser tool so exported data lines up
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.snapshot_key", "dr_analyst_v4_db")
	v.SetDefault("storage.preference_key", "dr_analyst_dont_ask_move")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_time", "5m")
	v.SetDefault("database.ping_timeout", "5s")

	v.SetDefault("redis.max_connections", 10)
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.ping_timeout", "5s")

	v.SetDefault("catalog.path", "./data/heroes.json")

	v.SetDefault("layout.front_slots", []int{0, 1})
	v.SetDefault("layout.front_self_divisor", 2)
	v.SetDefault("layout.back_self_divisor", 3)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("timeouts.http_middleware", "30s")
	v.SetDefault("timeouts.graceful_shutdown", "30s")
	v.SetDefault("timeouts.storage", "3s")
}

// Validate validates the configuration and ensures required fields are present
func (c *Config) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}

	if c.Server.Port == "" || c.Server.InternalPort == "" {
		return fmt.Errorf("server.port and server.internal_port are required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("required configuration field 'redis.url' is not set (use environment variable PLANNER_REDIS_URL)")
		}
		if c.Redis.MaxConnections <= 0 {
			return fmt.Errorf("redis.max_connections must be positive, got %d", c.Redis.MaxConnections)
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("required configuration field 'database.url' is not set (use environment variable PLANNER_DATABASE_URL)")
		}
		if c.Database.MaxConnections <= 0 {
			return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (expected memory, redis or postgres)", c.Storage.Driver)
	}

	if c.Storage.SnapshotKey == "" || c.Storage.PreferenceKey == "" {
		return fmt.Errorf("storage.snapshot_key and storage.preference_key cannot be empty")
	}
	if c.Storage.SnapshotKey == c.Storage.PreferenceKey {
		return fmt.Errorf("storage.snapshot_key and storage.preference_key must differ")
	}

	seen := make(map[int]bool, len(c.Layout.FrontSlots))
	for _, idx := range c.Layout.FrontSlots {
		if idx < 0 || idx > 4 {
			return fmt.Errorf("layout.front_slots contains out-of-range position %d", idx)
		}
		if seen[idx] {
			return fmt.Errorf("layout.front_slots contains duplicate position %d", idx)
		}
		seen[idx] = true
	}
	if c.Layout.FrontSelfDivisor <= 0 || c.Layout.BackSelfDivisor <= 0 {
		return fmt.Errorf("layout self divisors must be positive")
	}

	timeouts := map[string]time.Duration{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"timeouts.http_middleware": c.Timeouts.HTTPMiddleware,
		"timeouts.storage":         c.Timeouts.Storage,
	}

	for name, timeout := range timeouts {
		if timeout <= 0 {
			return fmt.Errorf("timeout '%s' must be positive, got %v", name, timeout)
		}
		if timeout > 10*time.Minute {
			return fmt.Errorf("timeout '%s' seems too large, got %v", name, timeout)
		}
	}

	return nil
}

// Address returns the public listen address.
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// InternalAddress returns the listen address for health and metrics.
func (s ServerConfig) InternalAddress() string {
	return s.Host + ":" + s.InternalPort
}
