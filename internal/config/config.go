// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendValkey   = "valkey"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// DefaultCategoryTTL is how long a cached category tree counts as fresh.
const DefaultCategoryTTL = 24 * time.Hour

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string

	// Persistent key-value store
	StoreBackend string
	StorePrefix  string
	SQLitePath   string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// Remote category API
	CategoryAPIURL   string
	CategoryAPIToken string
	RemoteTimeout    time.Duration
	RemoteMaxRetries int

	// Cache policy
	CategoryTTL       time.Duration
	CollationLanguage string

	// Network probe
	ProbeURL     string
	ProbeTimeout time.Duration
	AssumeOnline bool

	// Requests allowed per minute on the refresh endpoint, per client.
	RefreshRateLimit int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Malformed numbers, durations or
// booleans are reported as errors rather than silently replaced.
func Load() (*Config, error) {
	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "127.0.0.1"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(envOrDefault("STORE_BACKEND", BackendSQLite)),
		StorePrefix:  envOrDefault("STORE_PREFIX", "localmarket:"),
		SQLitePath:   envOrDefault("SQLITE_PATH", "localmarket.db"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "localmarket"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "localmarket"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "localmarket-cache"),

		CategoryAPIURL:   strings.TrimRight(os.Getenv("CATEGORY_API_URL"), "/"),
		CategoryAPIToken: os.Getenv("CATEGORY_API_TOKEN"),

		CollationLanguage: envOrDefault("COLLATION_LANGUAGE", "und"),
		ProbeURL:          os.Getenv("NETWORK_PROBE_URL"),
	}

	var err error
	if cfg.ValkeyDB, err = envInt("VALKEY_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RemoteMaxRetries, err = envInt("REMOTE_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.RefreshRateLimit, err = envInt("REFRESH_RATE_LIMIT", 6); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = envDuration("REMOTE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.CategoryTTL, err = envDuration("CATEGORY_CACHE_TTL", DefaultCategoryTTL); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = envDuration("NETWORK_PROBE_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.AssumeOnline, err = envBool("NETWORK_ASSUME_ONLINE", true); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendSQLite, BackendValkey, BackendPostgres, BackendS3:
	default:
		return nil, fmt.Errorf("STORE_BACKEND %q is not one of memory, sqlite, valkey, postgres, s3", cfg.StoreBackend)
	}
	if cfg.CategoryTTL <= 0 {
		return nil, fmt.Errorf("CATEGORY_CACHE_TTL must be positive, got %s", cfg.CategoryTTL)
	}

	if cfg.Env == "production" {
		if cfg.CategoryAPIURL == "" {
			return nil, fmt.Errorf("CATEGORY_API_URL must be set in production")
		}
		if cfg.StoreBackend == BackendPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
