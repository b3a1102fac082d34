// Package config provides configuration loading, defaults, and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMREC"

// newViper builds a pre-configured Viper instance: YAML file type, CHEMREC_
// env prefix, automatic env binding, and a key replacer mapping "." → "_" so
// that nested keys like "pubchem.base_url" resolve to
// "CHEMREC_PUBCHEM_BASE_URL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees env overrides for keys viper knows about, so every
	// config key is bound explicitly.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// configKeys enumerates every setting reachable through the environment.
var configKeys = []string{
	"log.level",
	"log.format",
	"log.output_paths",
	"pubchem.base_url",
	"pubchem.timeout",
	"pubchem.max_retries",
	"pubchem.retry_base_delay",
	"pubchem.tls_mode",
	"pubchem.ca_bundle",
	"cache.enabled",
	"cache.addr",
	"cache.username",
	"cache.password",
	"cache.db",
	"cache.key_prefix",
	"cache.ttl",
	"cache.dial_timeout",
	"output.folder",
	"output.format",
	"metrics.enabled",
	"metrics.listen",
}

// Load reads the YAML file at configPath, merges any CHEMREC_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMREC_* environment variables,
// with no config file required.
//
// Environment variable naming convention:
//
//	CHEMREC_<SECTION>_<FIELD>   e.g.  CHEMREC_PUBCHEM_TIMEOUT, CHEMREC_CACHE_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}
