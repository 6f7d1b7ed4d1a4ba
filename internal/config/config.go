// Package config loads server configuration from built-in defaults, an
// optional YAML file, and GEOCLEAR__ environment variables, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the complete server configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Displacement DisplacementConfig `koanf:"displacement"`
	Log          LogConfig          `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DisplacementConfig holds the algorithm defaults applied when a request
// does not override them, plus the input-size cap. Running time is bounded
// but quadratic in feature count, so public-facing deployments should keep
// MaxFeatures conservative.
type DisplacementConfig struct {
	MinClearanceMeters  float64 `koanf:"min_clearance_meters"`
	MinClearanceUnits   float64 `koanf:"min_clearance_units"`
	Iterations          int     `koanf:"iterations"`
	SmoothingIterations int     `koanf:"smoothing_iterations"`
	PriorityThreshold   int     `koanf:"priority_threshold"`
	MaxFeatures         int     `koanf:"max_features"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Displacement: DisplacementConfig{
			MinClearanceMeters:  10.0,
			MinClearanceUnits:   2.0,
			Iterations:          5,
			SmoothingIterations: 3,
			PriorityThreshold:   2,
			MaxFeatures:         2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load assembles the configuration. path may be empty; a missing explicit
// file is an error, but the defaults alone are a valid configuration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"server.address":                    defaults.Server.Address,
		"server.read_timeout":               defaults.Server.ReadTimeout,
		"server.write_timeout":              defaults.Server.WriteTimeout,
		"server.shutdown_timeout":           defaults.Server.ShutdownTimeout,
		"displacement.min_clearance_meters": defaults.Displacement.MinClearanceMeters,
		"displacement.min_clearance_units":  defaults.Displacement.MinClearanceUnits,
		"displacement.iterations":           defaults.Displacement.Iterations,
		"displacement.smoothing_iterations": defaults.Displacement.SmoothingIterations,
		"displacement.priority_threshold":   defaults.Displacement.PriorityThreshold,
		"displacement.max_features":         defaults.Displacement.MaxFeatures,
		"log.level":                         defaults.Log.Level,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// GEOCLEAR__SERVER__ADDRESS=:9090 style overrides.
	if err := k.Load(env.Provider("GEOCLEAR__", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "GEOCLEAR__")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
