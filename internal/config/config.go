package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	// ErrMissingDatabaseURL is returned when no database URL is configured.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	// ErrMissingPlaylistURL is returned when no playlist URL is configured.
	ErrMissingPlaylistURL = errors.New("PLAYLIST_URL is required")
)

// Defaults.
const (
	DefaultDriver          = "postgres"
	DefaultUserAgent       = "XtreamVault/1.0"
	DefaultTimeout         = 30 * time.Second
	DefaultRefreshInterval = 24 * time.Hour
	DefaultServerPort      = "8080"
	DefaultLogLevel        = "info"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseDriver string `yaml:"database_driver" env:"DATABASE_DRIVER"` // postgres or sqlite
	PlaylistURL    string `yaml:"playlist_url" env:"PLAYLIST_URL"`

	UserAgent string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"`

	// RefreshInterval is the minimum time between full playlist parses.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL"`
	// ThrottleOnFailure records a refresh even when the playlist download failed.
	ThrottleOnFailure bool `yaml:"throttle_on_failure" env:"THROTTLE_ON_FAILURE"`

	RedisURL   string `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort string `yaml:"server_port" env:"SERVER_PORT"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Load builds config from environment variables.
// If DATABASE_URL is not set, Load first loads .env.local and .env.
// DATABASE_URL and PLAYLIST_URL are required.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		PlaylistURL:    os.Getenv("PLAYLIST_URL"),
		UserAgent:      os.Getenv("FETCHER_USER_AGENT"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ServerPort:     os.Getenv("SERVER_PORT"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.Timeout = d
		}
	}
	if s := os.Getenv("REFRESH_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.RefreshInterval = d
		}
	}
	if s := os.Getenv("THROTTLE_ON_FAILURE"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			c.ThrottleOnFailure = b
		}
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DefaultDriver
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.ServerPort == "" {
		c.ServerPort = DefaultServerPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.PlaylistURL == "" {
		return ErrMissingPlaylistURL
	}
	return nil
}
