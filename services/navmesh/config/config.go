// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads RePath configuration.
//
// Values are resolved in priority order: environment variables (REPATH_*),
// then the YAML file, then built-in defaults. The merged result is validated
// before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the complete RePath configuration.
type Config struct {
	Mesh       MeshConfig       `yaml:"mesh"`
	Precompute PrecomputeConfig `yaml:"precompute"`
	Cache      CacheConfig      `yaml:"cache"`
	Search     SearchConfig     `yaml:"search"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	RunLog     RunLogConfig     `yaml:"runlog"`
}

// MeshConfig locates the navigation mesh.
type MeshConfig struct {
	// Path is the OBJ file to load.
	Path string `yaml:"path" validate:"required"`

	// Undirected adds the reverse of every triangle edge.
	Undirected bool `yaml:"undirected"`

	// Watch reloads the mesh when the file changes (serve only).
	Watch bool `yaml:"watch"`

	// WatchDebounce is how long the file must be quiet before reloading.
	WatchDebounce time.Duration `yaml:"watch_debounce" validate:"gte=0"`
}

// PrecomputeConfig controls cache warming.
type PrecomputeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float64 `yaml:"radius" validate:"gt=0"`
	Pairs   int     `yaml:"pairs" validate:"gte=0"`

	// Workers sizes the precompute and segmented-query pools. 0 = GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`

	// Seed makes sampling reproducible. 0 = random.
	Seed uint64 `yaml:"seed"`
}

// CacheConfig selects the path cache policy.
type CacheConfig struct {
	Policy   string `yaml:"policy" validate:"oneof=lru concurrent"`
	Capacity int    `yaml:"capacity" validate:"gte=0"`
}

// SearchConfig selects the search algorithm.
type SearchConfig struct {
	Algorithm   string        `yaml:"algorithm" validate:"oneof=astar bidirectional"`
	MeetingRule string        `yaml:"meeting_rule" validate:"oneof=bounded frontier"`
	TimePerUnit time.Duration `yaml:"time_per_unit" validate:"gt=0"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port  int  `yaml:"port" validate:"min=1,max=65535"`
	Debug bool `yaml:"debug"`

	// RateLimit is the sustained query rate per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// TelemetryConfig configures OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
}

// RunLogConfig locates the persisted metrics log.
type RunLogConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mesh: MeshConfig{
			Path:          "navmesh.obj",
			WatchDebounce: 250 * time.Millisecond,
		},
		Precompute: PrecomputeConfig{
			Enabled: true,
			Radius:  50,
			Pairs:   1000,
		},
		Cache: CacheConfig{
			Policy:   string(cache.PolicyLRU),
			Capacity: 100_000,
		},
		Search: SearchConfig{
			Algorithm:   "astar",
			MeetingRule: "bounded",
			TimePerUnit: time.Second,
		},
		Server: ServerConfig{
			Port:            12300,
			RateLimit:       0,
			RateBurst:       100,
			ShutdownTimeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "repath",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
		RunLog: RunLogConfig{
			Path: "repath-runs",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (may
// be empty or missing), and REPATH_* environment variables, then validates.
//
// Outputs:
//
//	Config - Merged configuration.
//	error - Non-nil if the file exists but is invalid, or validation fails.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints and cross-field rules.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Cache.Policy == string(cache.PolicyLRU) && c.Cache.Capacity <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, cache.ErrInvalidCapacity)
	}
	if !c.RunLog.InMemory && c.RunLog.Path == "" {
		return fmt.Errorf("%w: runlog.path is required unless runlog.in_memory is set", ErrInvalidConfig)
	}
	return nil
}

// loadEnv applies REPATH_* overrides. Unparsable values are an error rather
// than silently ignored.
func loadEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = i
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	// Mesh
	str("REPATH_MESH_PATH", &cfg.Mesh.Path)
	boolean("REPATH_MESH_UNDIRECTED", &cfg.Mesh.Undirected)
	boolean("REPATH_MESH_WATCH", &cfg.Mesh.Watch)

	// Precompute
	boolean("REPATH_PRECOMPUTE_ENABLED", &cfg.Precompute.Enabled)
	float("REPATH_PRECOMPUTE_RADIUS", &cfg.Precompute.Radius)
	num("REPATH_PRECOMPUTE_PAIRS", &cfg.Precompute.Pairs)
	num("REPATH_PRECOMPUTE_WORKERS", &cfg.Precompute.Workers)

	// Cache
	str("REPATH_CACHE_POLICY", &cfg.Cache.Policy)
	num("REPATH_CACHE_CAPACITY", &cfg.Cache.Capacity)

	// Search
	str("REPATH_SEARCH_ALGORITHM", &cfg.Search.Algorithm)
	str("REPATH_SEARCH_MEETING_RULE", &cfg.Search.MeetingRule)
	duration("REPATH_SEARCH_TIME_PER_UNIT", &cfg.Search.TimePerUnit)

	// Server
	num("REPATH_SERVER_PORT", &cfg.Server.Port)
	boolean("REPATH_SERVER_DEBUG", &cfg.Server.Debug)
	float("REPATH_SERVER_RATE_LIMIT", &cfg.Server.RateLimit)
	num("REPATH_SERVER_RATE_BURST", &cfg.Server.RateBurst)

	// Telemetry
	str("REPATH_TELEMETRY_SERVICE_NAME", &cfg.Telemetry.ServiceName)
	str("REPATH_TELEMETRY_TRACE_EXPORTER", &cfg.Telemetry.TraceExporter)
	str("REPATH_TELEMETRY_METRIC_EXPORTER", &cfg.Telemetry.MetricExporter)
	str("REPATH_TELEMETRY_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)

	// Run log
	str("REPATH_RUNLOG_PATH", &cfg.RunLog.Path)
	boolean("REPATH_RUNLOG_IN_MEMORY", &cfg.RunLog.InMemory)

	return errors.Join(errs...)
}
