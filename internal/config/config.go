package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the application.
type Config struct {
	Paths   PathsConfig
	History HistoryConfig
	Log     LogConfig
}

// PathsConfig holds the input and output locations of a build.
type PathsConfig struct {
	AddressRootDir string `env:"ADDRESS_ROOT_DIR" envDefault:"./dev-ctx/addresses"`
	OutputPath     string `env:"OUTPUT_PATH" envDefault:"./dev-ctx/EulerChains.json"`
	OutputIndent   bool   `env:"OUTPUT_INDENT" envDefault:"false"`
	NetworksFile   string `env:"NETWORKS_FILE"` // Empty uses the built-in network list
}

// HistoryConfig holds build history database configuration.
type HistoryConfig struct {
	Driver string `env:"HISTORY_DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"HISTORY_DB_DSN"` // Empty disables build history
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Paths); err != nil {
		return nil, fmt.Errorf("parsing paths config: %w", err)
	}
	if err := env.Parse(&cfg.History); err != nil {
		return nil, fmt.Errorf("parsing history config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// HistoryEnabled returns true if builds should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.History.DSN != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Paths.AddressRootDir == "" {
		return fmt.Errorf("ADDRESS_ROOT_DIR must not be empty")
	}
	if c.Paths.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH must not be empty")
	}

	if c.HistoryEnabled() {
		switch c.History.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("HISTORY_DB_DRIVER must be sqlite3 or postgres, got %q", c.History.Driver)
		}
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.Log.Format)
	}

	return nil
}
