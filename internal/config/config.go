package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Backend names accepted for STORE_BACKEND and EVENTS_BACKEND
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the sign-up service
type Config struct {
	// Server configuration
	HTTPPort int    `env:"SIGNUP_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"SIGNUP_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Backends
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	EventsBackend string `env:"EVENTS_BACKEND" envDefault:"memory"`

	// Redis configuration
	Redis RedisConfig

	// Sign-up behaviour
	Signup SignupConfig

	// Roster monitor
	Monitor MonitorConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	KeyPrefix    string `env:"REDIS_KEY_PREFIX" envDefault:"signup"`
	StreamMaxLen int64  `env:"REDIS_STREAM_MAXLEN" envDefault:"1000"`
}

// SignupConfig holds sign-up rules and the activity catalog source
type SignupConfig struct {
	EnforceCapacity bool   `env:"SIGNUP_ENFORCE_CAPACITY" envDefault:"false"`
	CatalogFile     string `env:"SIGNUP_CATALOG_FILE"`
}

// MonitorConfig holds roster monitor configuration
type MonitorConfig struct {
	Interval time.Duration `env:"MONITOR_INTERVAL" envDefault:"30s"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	HTTPRead  time.Duration `env:"TIMEOUT_HTTP_READ" envDefault:"5s"`
	HTTPWrite time.Duration `env:"TIMEOUT_HTTP_WRITE" envDefault:"10s"`
	Shutdown  time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"15s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("HTTP and gRPC ports must differ: %d", c.HTTPPort)
	}

	for name, backend := range map[string]string{"store": c.StoreBackend, "events": c.EventsBackend} {
		if backend != BackendMemory && backend != BackendRedis {
			return fmt.Errorf("invalid %s backend: %s (must be memory or redis)", name, backend)
		}
	}

	if c.UsesRedis() {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
		if c.Redis.KeyPrefix == "" {
			return fmt.Errorf("redis key prefix is required")
		}
	}

	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// UsesRedis reports whether any backend needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.StoreBackend == BackendRedis || c.EventsBackend == BackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
