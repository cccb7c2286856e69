package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration of the order service
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// DatabaseConfig selects the database driver and connection string
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// PlannerConfig tunes the preview calculations
type PlannerConfig struct {
	// MissingLimit is how many missing materials the order summary lists
	// before collapsing the rest into a count.
	MissingLimit int `yaml:"missing_limit"`
}

// Default returns the configuration used when no file is present: a local
// SQLite database and the standard display limit.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./fabrica.db",
		},
		Planner: PlannerConfig{
			MissingLimit: 5,
		},
	}
}

// Load reads the YAML configuration file. On any failure the returned
// config is still usable (defaults), alongside the error, so callers can
// warn and continue.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Database.Driver != "sqlite3" && cfg.Database.Driver != "postgres" {
		return Default(), fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return cfg, nil
}
