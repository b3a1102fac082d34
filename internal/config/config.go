// Package config defines the configuration structures for the ChemReconcile
// tool.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemReconcile/internal/infrastructure/cache"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
)

// PubChemConfig holds the external-database client tunables.
type PubChemConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	TLSMode        string        `mapstructure:"tls_mode"` // "system" | "custom"
	CABundle       string        `mapstructure:"ca_bundle"`
}

// OutputConfig holds the report writer settings.
type OutputConfig struct {
	// Folder is "" (working directory), "auto" (output/<stem>/), or a path.
	Folder string `mapstructure:"folder"`
	Format string `mapstructure:"format"` // "xlsx" | "csv"
}

// MetricsConfig holds the optional prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Config is the root configuration object.
type Config struct {
	Log     logging.LogConfig `mapstructure:"log"`
	PubChem PubChemConfig     `mapstructure:"pubchem"`
	Cache   cache.RedisConfig `mapstructure:"cache"`
	Output  OutputConfig      `mapstructure:"output"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
}

// Validate checks cross-field constraints.  Call after ApplyDefaults.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.PubChem.BaseURL == "" {
		return fmt.Errorf("config: pubchem.base_url is required")
	}
	if c.PubChem.MaxRetries < 1 {
		return fmt.Errorf("config: pubchem.max_retries must be ≥ 1, got %d", c.PubChem.MaxRetries)
	}
	if c.PubChem.RetryBaseDelay <= 0 {
		return fmt.Errorf("config: pubchem.retry_base_delay must be positive, got %s", c.PubChem.RetryBaseDelay)
	}
	switch c.PubChem.TLSMode {
	case "system", "custom":
	default:
		return fmt.Errorf("config: pubchem.tls_mode %q is invalid; expected system|custom", c.PubChem.TLSMode)
	}
	if c.PubChem.TLSMode == "custom" && c.PubChem.CABundle == "" {
		return fmt.Errorf("config: pubchem.ca_bundle is required when tls_mode is custom")
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
	}

	switch c.Output.Format {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("config: output.format %q is invalid; expected xlsx|csv", c.Output.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("config: metrics.listen is required when metrics are enabled")
	}

	return nil
}
