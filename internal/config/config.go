// Package config loads application configuration from a YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string `yaml:"addr"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	} `yaml:"server"`
	Examples struct {
		Dir string `yaml:"dir"`
	} `yaml:"examples"`
	History struct {
		SQLitePath string `yaml:"sqlite_path"` // empty keeps history in memory only
	} `yaml:"history"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Schedule struct {
		SessionSweepCron string `yaml:"session_sweep_cron"`
		CorpusRescanCron string `yaml:"corpus_rescan_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DETECTOR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DETECTOR_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("DETECTOR_EXAMPLES_DIR"); v != "" {
		cfg.Examples.Dir = v
	}
	if v := os.Getenv("DETECTOR_SQLITE_PATH"); v != "" {
		cfg.History.SQLitePath = v
	}
	if v := os.Getenv("DETECTOR_SESSION_TTL"); v != "" {
		cfg.Session.TTL = v
	}
	if v := os.Getenv("DETECTOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Examples.Dir == "" {
		cfg.Examples.Dir = "example_csvs"
	}
	if cfg.Session.TTL == "" {
		cfg.Session.TTL = "2h"
	}
	if cfg.Schedule.SessionSweepCron == "" {
		cfg.Schedule.SessionSweepCron = "0 */5 * * * *"
	}
	if cfg.Schedule.CorpusRescanCron == "" {
		cfg.Schedule.CorpusRescanCron = "0 0 * * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// SessionTTL returns the parsed session lifetime.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 2 * time.Hour
	}
	return d
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return fmt.Errorf("session.ttl: %w", err)
	}
	return nil
}
