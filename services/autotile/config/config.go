// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the autotile service configuration.
//
// Values are merged with priority env > file > defaults. Files may be YAML
// or JSON. Environment variables use the AUTOTILE_ prefix.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid autotile config")

var configValidate = validator.New()

// Config is the full service configuration.
type Config struct {
	Solver    solver.Config   `json:"solver" yaml:"solver"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Service   ServiceConfig   `json:"service" yaml:"service"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int           `json:"port" yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" validate:"gte=0"`

	// RateLimit is the sustained request rate per second. 0 disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `json:"burst" yaml:"burst" validate:"gte=0"`

	// MaxBatch caps the number of scenarios in one batch request.
	MaxBatch int `json:"max_batch" yaml:"max_batch" validate:"min=1"`
}

// ServiceConfig configures solve execution.
type ServiceConfig struct {
	// MaxConcurrency bounds concurrent solves within a batch.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" validate:"min=1"`
}

// CacheConfig configures the persistent solution cache.
type CacheConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Dir      string        `json:"dir" yaml:"dir" validate:"required_if=Enabled true InMemory false"`
	InMemory bool          `json:"in_memory" yaml:"in_memory"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" validate:"gte=0"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	ServiceName     string  `json:"service_name" yaml:"service_name" validate:"required"`
	TraceExporter   string  `json:"trace_exporter" yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	OTLPEndpoint    string  `json:"otlp_endpoint" yaml:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`
	MetricsExporter string  `json:"metrics_exporter" yaml:"metrics_exporter" validate:"oneof=none stdout prometheus"`
	SampleRate      float64 `json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `json:"json" yaml:"json"`
	Dir   string `json:"dir" yaml:"dir"`
}

// Default returns the configuration used without a file or environment.
func Default() Config {
	return Config{
		Solver: solver.DefaultConfig(),
		Server: ServerConfig{
			Port:         8095,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit:    50,
			Burst:        100,
			MaxBatch:     64,
		},
		Service: ServiceConfig{
			MaxConcurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "~/.autotile/cache",
			TTL:     7 * 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "autotile",
			TraceExporter:   "none",
			MetricsExporter: "prometheus",
			SampleRate:      1.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - path: YAML or JSON file. Empty or missing means defaults.
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or the merged
//     configuration fails validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks struct tags and the solver section.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	// Solver
	envInt("AUTOTILE_TOP_NUM", &cfg.Solver.TopNum)
	envInt("AUTOTILE_SEARCH_LENGTH", &cfg.Solver.SearchLength)
	envInt("AUTOTILE_ITERATIONS", &cfg.Solver.Iterations)
	envBool("AUTOTILE_SIMPLE_MODE", &cfg.Solver.SimpleMode)
	envFloat("AUTOTILE_MOMENTUM_FACTOR", &cfg.Solver.MomentumFactor)

	// Server
	envInt("AUTOTILE_PORT", &cfg.Server.Port)
	envFloat("AUTOTILE_RATE_LIMIT", &cfg.Server.RateLimit)
	envInt("AUTOTILE_MAX_BATCH", &cfg.Server.MaxBatch)
	envInt("AUTOTILE_MAX_CONCURRENCY", &cfg.Service.MaxConcurrency)

	// Cache
	envBool("AUTOTILE_CACHE_ENABLED", &cfg.Cache.Enabled)
	envString("AUTOTILE_CACHE_DIR", &cfg.Cache.Dir)
	if v := os.Getenv("AUTOTILE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}

	// Telemetry
	envString("AUTOTILE_TRACE_EXPORTER", &cfg.Telemetry.TraceExporter)
	envString("AUTOTILE_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
	envString("AUTOTILE_METRICS_EXPORTER", &cfg.Telemetry.MetricsExporter)

	// Logging
	envString("AUTOTILE_LOG_LEVEL", &cfg.Logging.Level)
	envBool("AUTOTILE_LOG_JSON", &cfg.Logging.JSON)
	envString("AUTOTILE_LOG_DIR", &cfg.Logging.Dir)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
