// Package config loads cpm settings from a YAML file, CPM_* environment
// variables and command-line flags through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meikuraledutech/cpm"
	"github.com/spf13/viper"
)

// EpochLayout is the date format of analysis.epoch.
const EpochLayout = "2006-01-02"

// Config represents the complete cpm configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	// Address is the listen address (default: ":3000")
	Address string `mapstructure:"address"`
}

// DatabaseConfig selects the project store
type DatabaseConfig struct {
	// URL is a PostgreSQL connection string. Empty keeps projects in memory.
	URL string `mapstructure:"url"`
	// AutoMigrate creates the schema on startup (default: true)
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// KafkaConfig controls analysis event publishing
type KafkaConfig struct {
	// Brokers disables publishing when empty
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: "info")
	Level string `mapstructure:"level"`
	// Dir receives cpm.log; empty logs to stderr
	Dir string `mapstructure:"dir"`
}

// AnalysisConfig sets the scheduling and path analysis options
type AnalysisConfig struct {
	// Mode is "topological" (default) or "insertion"
	Mode string `mapstructure:"mode"`
	// Unresolved is "ignore", "warn" (default) or "reject"
	Unresolved string `mapstructure:"unresolved"`
	MaxPaths   int    `mapstructure:"max_paths"`
	MaxDepth   int    `mapstructure:"max_depth"`
	// Epoch is day 0 as YYYY-MM-DD (default: "2024-01-01")
	Epoch string `mapstructure:"epoch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Address: ":3000"},
		Database: DatabaseConfig{AutoMigrate: true},
		Kafka:    KafkaConfig{Topic: "cpm.project.analyzed"},
		Logging:  LoggingConfig{Level: "info"},
		Analysis: AnalysisConfig{
			Mode:       string(cpm.ModeTopological),
			Unresolved: string(cpm.UnresolvedWarn),
			MaxPaths:   cpm.DefaultMaxPaths,
			MaxDepth:   cpm.DefaultMaxDepth,
			Epoch:      cpm.DefaultEpoch.Format(EpochLayout),
		},
	}
}

// SetDefaults registers every default with viper so env overrides resolve.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("server.address", defaults.Server.Address)

	viper.SetDefault("database.url", defaults.Database.URL)
	viper.SetDefault("database.auto_migrate", defaults.Database.AutoMigrate)

	viper.SetDefault("kafka.brokers", defaults.Kafka.Brokers)
	viper.SetDefault("kafka.topic", defaults.Kafka.Topic)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("analysis.mode", defaults.Analysis.Mode)
	viper.SetDefault("analysis.unresolved", defaults.Analysis.Unresolved)
	viper.SetDefault("analysis.max_paths", defaults.Analysis.MaxPaths)
	viper.SetDefault("analysis.max_depth", defaults.Analysis.MaxDepth)
	viper.SetDefault("analysis.epoch", defaults.Analysis.Epoch)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Options converts the analysis section into cpm.Options.
func (c *Config) Options() (cpm.Options, error) {
	mode, err := cpm.ParseScheduleMode(c.Analysis.Mode)
	if err != nil {
		return cpm.Options{}, err
	}
	policy, err := cpm.ParseUnresolvedPolicy(c.Analysis.Unresolved)
	if err != nil {
		return cpm.Options{}, err
	}
	epoch := cpm.DefaultEpoch
	if c.Analysis.Epoch != "" {
		epoch, err = time.Parse(EpochLayout, c.Analysis.Epoch)
		if err != nil {
			return cpm.Options{}, fmt.Errorf("analysis.epoch: %w", err)
		}
	}
	return cpm.Options{
		Mode:       mode,
		Unresolved: policy,
		Epoch:      epoch,
		MaxPaths:   c.Analysis.MaxPaths,
		MaxDepth:   c.Analysis.MaxDepth,
	}, nil
}

// ConfigDir returns $HOME/.config/cpm, or "" when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cpm")
}
