package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/trigger"
)

type (
	// Config holds configuration settings for the timer daemon
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string
		Env      string

		// Session & Timers
		SessionID     string
		OverdueDelay  time.Duration
		HeartbeatCron string

		// Snapshot Store
		Redis RedisConfig

		ShutdownTimeout time.Duration
	}

	// RedisConfig addresses the Redis instance holding timer snapshots
	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
)

const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultOverdueDelay    = trigger.DefaultOverdueDelay

	DefaultAPIPort   = 8080
	DefaultAPIHost   = "0.0.0.0"
	DefaultEnv       = "development"
	DefaultSessionID = "timerd"
	MaxTCPPort       = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "timerd"
	MaxRedisDB           = 15

	MaxOverdueDelay    = 24 * time.Hour
	MaxShutdownTimeout = time.Hour
)

var (
	ErrInvalidAPIPort         = errors.New("invalid API port")
	ErrInvalidOverdueDelay    = errors.New("overdue delay cannot be negative")
	ErrInvalidShutdownTimeout = errors.New(
		"shutdown timeout must be positive",
	)
	ErrInvalidHeartbeatCron = errors.New("invalid heartbeat cron")
	ErrEmptySessionID       = errors.New("session id is required")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// API server, timer recovery, and snapshot store
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		Env:             DefaultEnv,
		SessionID:       DefaultSessionID,
		OverdueDelay:    DefaultOverdueDelay,
		ShutdownTimeout: DefaultShutdownTimeout,
		Redis: RedisConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if env := os.Getenv("ENV"); env != "" {
		c.Env = env
	}
	if sessionID := os.Getenv("SESSION_ID"); sessionID != "" {
		c.SessionID = sessionID
	}
	if cron := os.Getenv("HEARTBEAT_CRON"); cron != "" {
		c.HeartbeatCron = cron
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		c.Redis.Prefix = prefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.Redis.DB, -1, MaxRedisDB); err != nil {
		return err
	}
	if err := loadEnvMillis(
		"OVERDUE_TIMER_DELAY", &c.OverdueDelay, -1, MaxOverdueDelay,
	); err != nil {
		return err
	}
	if err := loadEnvMillis(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, 0, MaxShutdownTimeout,
	); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.OverdueDelay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOverdueDelay, c.OverdueDelay)
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if c.SessionID == "" {
		return ErrEmptySessionID
	}

	if c.HeartbeatCron != "" {
		if _, err := trigger.ParseCron(c.HeartbeatCron); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHeartbeatCron, err)
		}
	}

	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvMillis reads key as a number of milliseconds bounded like
// loadEnvInt
func loadEnvMillis(
	key string, dst *time.Duration, min int64, max time.Duration,
) error {
	ms := dst.Milliseconds()
	if err := loadEnvInt(key, &ms, min, max.Milliseconds()); err != nil {
		return err
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}
