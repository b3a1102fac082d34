package config

import "time"

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultPubChemTimeout = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 400 * time.Millisecond
	DefaultTLSMode        = "system"

	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheKeyPrefix = "chemrec:"
	DefaultCacheTTL       = 24 * time.Hour

	DefaultOutputFormat = "xlsx"

	DefaultMetricsListen = ":9108"
)

// ApplyDefaults fills every zero-value field in cfg with the tool default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.PubChem.BaseURL == "" {
		cfg.PubChem.BaseURL = DefaultPubChemBaseURL
	}
	if cfg.PubChem.Timeout == 0 {
		cfg.PubChem.Timeout = DefaultPubChemTimeout
	}
	if cfg.PubChem.MaxRetries == 0 {
		cfg.PubChem.MaxRetries = DefaultMaxRetries
	}
	if cfg.PubChem.RetryBaseDelay == 0 {
		cfg.PubChem.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.PubChem.TLSMode == "" {
		cfg.PubChem.TLSMode = DefaultTLSMode
	}

	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
}
