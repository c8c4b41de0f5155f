// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package config loads layered configuration with koanf v2:
// built-in defaults, then an optional YAML file, then environment
// variables. Precedence: ENV > file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "RADIOGRAPH_CONFIG"

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is
// unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config/config.yaml",
	"/etc/radiograph/config.yaml",
}

// DefaultCallsign is the placeholder station identity. Running with it
// is allowed but logged as a warning: APRS-IS relays accept it only as
// receive-only.
const DefaultCallsign = "N0CALL"

// Config is the root configuration.
type Config struct {
	Aprs     AprsConfig     `koanf:"aprs"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AprsConfig configures the APRS-IS upstream connection.
type AprsConfig struct {
	// Callsign identifies this station in the login handshake.
	Callsign string `koanf:"callsign"`
	// Password is the APRS-IS passcode. "-1" logs in receive-only.
	Password string `koanf:"password"`
	// Filter is the server-side packet filter expression.
	Filter string `koanf:"filter"`
	Server string `koanf:"server"`
	Port   int    `koanf:"port"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	// Path is the database file; ":memory:" keeps it in process.
	Path            string        `koanf:"path"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// CacheConfig configures the dedup cache.
type CacheConfig struct {
	// TTL is the rolling dedup window.
	TTL time.Duration `koanf:"ttl"`
}

// IngestConfig configures the pipeline.
type IngestConfig struct {
	QueueCapacity     int           `koanf:"queue_capacity"`
	Workers           int           `koanf:"workers"`
	ReconnectInterval time.Duration `koanf:"reconnect_interval"`
	SuperviseInterval time.Duration `koanf:"supervise_interval"`
	DrainTimeout      time.Duration `koanf:"drain_timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig configures the query API surface.
type APIConfig struct {
	// RateLimit is requests per minute per client IP.
	RateLimit       int      `koanf:"rate_limit"`
	CORSOrigins     []string `koanf:"cors_origins"`
	DefaultPageSize int      `koanf:"default_page_size"`
	MaxPageSize     int      `koanf:"max_page_size"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Aprs: AprsConfig{
			Callsign: DefaultCallsign,
			Password: "-1",
			Filter:   "r/52/21/500",
			Server:   "rotate.aprs2.net",
			Port:     14580,
		},
		Database: DatabaseConfig{
			Path:            "data/radiograph.db",
			MaxOpenConns:    8,
			MaxIdleConns:    4,
			ConnMaxLifetime: time.Hour,
		},
		Cache: CacheConfig{
			TTL: 30 * time.Second,
		},
		Ingest: IngestConfig{
			QueueCapacity:     10000,
			Workers:           4,
			ReconnectInterval: 5 * time.Second,
			SuperviseInterval: 30 * time.Second,
			DrainTimeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			RateLimit:       300,
			CORSOrigins:     []string{"*"},
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings translates environment variable names to config paths.
var envMappings = map[string]string{
	"aprs_callsign": "aprs.callsign",
	"aprs_password": "aprs.password",
	"aprs_filter":   "aprs.filter",
	"aprs_server":   "aprs.server",
	"aprs_port":     "aprs.port",

	"duckdb_path":            "database.path",
	"db_max_open_conns":      "database.max_open_conns",
	"db_max_idle_conns":      "database.max_idle_conns",
	"db_conn_max_lifetime":   "database.conn_max_lifetime",
	"dedup_ttl":              "cache.ttl",
	"ingest_queue_capacity":  "ingest.queue_capacity",
	"ingest_workers":         "ingest.workers",
	"reconnect_interval":     "ingest.reconnect_interval",
	"supervise_interval":     "ingest.supervise_interval",
	"ingest_drain_timeout":   "ingest.drain_timeout",
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_shutdown_timeout":  "server.shutdown_timeout",
	"api_rate_limit":         "api.rate_limit",
	"api_cors_origins":       "api.cors_origins",
	"api_default_page_size":  "api.default_page_size",
	"api_max_page_size":      "api.max_page_size",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
	"log_caller":             "logging.caller",
}

func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set
// through the environment.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// IsDefaultCallsign reports whether the placeholder station identity is
// still in use.
func (c *Config) IsDefaultCallsign() bool {
	return strings.EqualFold(c.Aprs.Callsign, DefaultCallsign)
}

// ServerAddr returns the HTTP listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AprsAddr returns the upstream APRS-IS address.
func (c *Config) AprsAddr() string {
	return fmt.Sprintf("%s:%d", c.Aprs.Server, c.Aprs.Port)
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Aprs.Callsign == "" {
		return fmt.Errorf("aprs.callsign must not be empty")
	}
	if len(c.Aprs.Callsign) > 15 {
		return fmt.Errorf("aprs.callsign %q exceeds 15 characters", c.Aprs.Callsign)
	}
	if c.Aprs.Server == "" {
		return fmt.Errorf("aprs.server must not be empty")
	}
	if c.Aprs.Port < 1 || c.Aprs.Port > 65535 {
		return fmt.Errorf("aprs.port %d out of range", c.Aprs.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Ingest.QueueCapacity < 1 {
		return fmt.Errorf("ingest.queue_capacity must be at least 1")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1")
	}
	if c.Ingest.ReconnectInterval <= 0 || c.Ingest.SuperviseInterval <= 0 {
		return fmt.Errorf("ingest intervals must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.API.RateLimit < 1 {
		return fmt.Errorf("api.rate_limit must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be in [1, max_page_size]")
	}
	if c.API.MaxPageSize > 1000 {
		return fmt.Errorf("api.max_page_size must not exceed 1000")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	return nil
}
