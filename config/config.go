// Package config loads the neurographite runtime configuration from
// environment variables, with an optional YAML override file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// PersistenceMode selects the persistence backend a coordinator wires up
// at startup.
type PersistenceMode string

const (
	PersistenceMemory PersistenceMode = "memory"
	PersistenceFile   PersistenceMode = "file"
	PersistenceBadger PersistenceMode = "badger"
)

// Config holds every runtime tunable, plus PersistenceMode.
type Config struct {
	DataDir string `yaml:"data_dir"`

	SpikeThreshold   float64       `yaml:"spike_threshold"`
	DecayRate        float64       `yaml:"decay_rate"`
	RefractoryPeriod time.Duration `yaml:"refractory_period"`
	MaxCascadeDepth  int           `yaml:"max_cascade_depth"`
	SyncInterval     time.Duration `yaml:"sync_interval"`

	PersistenceMode PersistenceMode `yaml:"persistence_mode"`
}

// LoadFromEnv reads every NEUROGRAPHITE_* environment variable, applying
// documented defaults where unset. Call Validate before use.
//
// Example:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("configuration error: %v", err)
//	}
func LoadFromEnv() *Config {
	return &Config{
		DataDir:          getEnv("NEUROGRAPHITE_DATA_DIR", "./data"),
		SpikeThreshold:   getEnvFloat("NEUROGRAPHITE_SPIKE_THRESHOLD", 0.7),
		DecayRate:        getEnvFloat("NEUROGRAPHITE_DECAY_RATE", 0.99),
		RefractoryPeriod: getEnvDuration("NEUROGRAPHITE_REFRACTORY_PERIOD", 100*time.Millisecond),
		MaxCascadeDepth:  getEnvInt("NEUROGRAPHITE_MAX_CASCADE_DEPTH", 10),
		SyncInterval:     getEnvDuration("NEUROGRAPHITE_SYNC_INTERVAL", 5*time.Minute),
		PersistenceMode:  PersistenceMode(getEnv("NEUROGRAPHITE_PERSISTENCE_MODE", "memory")),
	}
}

// LoadOverrideFile merges a YAML override file on top of cfg, for fields
// present in the file. Missing files are not an error.
func (c *Config) LoadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading override file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing override file: %w", err)
	}
	return nil
}

// Validate checks the configuration for out-of-range values: thresholds
// and rates are probability-like scalars, depth and intervals must be
// positive.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.SpikeThreshold < 0 || c.SpikeThreshold > 1 {
		return fmt.Errorf("config: spike_threshold must be in [0, 1], got %v", c.SpikeThreshold)
	}
	if c.DecayRate < 0 || c.DecayRate > 1 {
		return fmt.Errorf("config: decay_rate must be in [0, 1], got %v", c.DecayRate)
	}
	if c.MaxCascadeDepth <= 0 {
		return fmt.Errorf("config: max_cascade_depth must be positive, got %d", c.MaxCascadeDepth)
	}
	if c.RefractoryPeriod < 0 {
		return fmt.Errorf("config: refractory_period must not be negative")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("config: sync_interval must be positive")
	}
	switch c.PersistenceMode {
	case PersistenceMemory, PersistenceFile, PersistenceBadger:
	default:
		return fmt.Errorf("config: unknown persistence_mode %q", c.PersistenceMode)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
