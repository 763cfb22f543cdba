package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL       string `yaml:"database_url"`
	DatabaseDriver    string `yaml:"database_driver"`
	PlaylistURL       string `yaml:"playlist_url"`
	UserAgent         string `yaml:"user_agent"`
	Timeout           string `yaml:"timeout"`
	RefreshInterval   string `yaml:"refresh_interval"`
	ThrottleOnFailure bool   `yaml:"throttle_on_failure"`
	RedisURL          string `yaml:"redis_url"`
	ServerPort        string `yaml:"server_port"`
	LogLevel          string `yaml:"log_level"`
}

// LoadFromFile loads config from a YAML file. database_url and playlist_url are required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c := &Config{
		DatabaseURL:       f.DatabaseURL,
		DatabaseDriver:    f.DatabaseDriver,
		PlaylistURL:       f.PlaylistURL,
		UserAgent:         f.UserAgent,
		ThrottleOnFailure: f.ThrottleOnFailure,
		RedisURL:          f.RedisURL,
		ServerPort:        f.ServerPort,
		LogLevel:          f.LogLevel,
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}
	if f.RefreshInterval != "" {
		if d, err := time.ParseDuration(f.RefreshInterval); err == nil {
			c.RefreshInterval = d
		}
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
