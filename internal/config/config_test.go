package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DefaultPubChemBaseURL, cfg.PubChem.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.PubChem.Timeout)
	assert.Equal(t, 3, cfg.PubChem.MaxRetries)
	assert.Equal(t, 400*time.Millisecond, cfg.PubChem.RetryBaseDelay)
	assert.Equal(t, "system", cfg.PubChem.TLSMode)
	assert.Equal(t, "chemrec:", cfg.Cache.KeyPrefix)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.PubChem.MaxRetries = 5
	cfg.Output.Format = "csv"
	ApplyDefaults(cfg)

	assert.Equal(t, 5, cfg.PubChem.MaxRetries)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestValidateDefaultsPass(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"missing base url", func(c *Config) { c.PubChem.BaseURL = "" }},
		{"zero retries", func(c *Config) { c.PubChem.MaxRetries = 0 }},
		{"negative delay", func(c *Config) { c.PubChem.RetryBaseDelay = -time.Second }},
		{"bad tls mode", func(c *Config) { c.PubChem.TLSMode = "public" }},
		{"custom tls without bundle", func(c *Config) { c.PubChem.TLSMode = "custom" }},
		{"cache without addr", func(c *Config) { c.Cache.Enabled = true; c.Cache.Addr = "" }},
		{"bad output format", func(c *Config) { c.Output.Format = "pdf" }},
		{"metrics without listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateCustomTLSWithBundle(t *testing.T) {
	cfg := validConfig()
	cfg.PubChem.TLSMode = "custom"
	cfg.PubChem.CABundle = "/etc/ssl/corp-ca.pem"
	require.NoError(t, cfg.Validate())
}
