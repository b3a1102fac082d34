package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	content := `
log:
  level: debug
  format: json
pubchem:
  timeout: 10s
  max_retries: 5
output:
  folder: auto
  format: csv
`
	path := filepath.Join(t.TempDir(), "chemreconcile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.PubChem.Timeout)
	assert.Equal(t, 5, cfg.PubChem.MaxRetries)
	assert.Equal(t, "auto", cfg.Output.Folder)
	assert.Equal(t, "csv", cfg.Output.Format)

	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultPubChemBaseURL, cfg.PubChem.BaseURL)
	assert.Equal(t, 400*time.Millisecond, cfg.PubChem.RetryBaseDelay)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	content := "log:\n  level: shouting\n"
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEMREC_PUBCHEM_MAX_RETRIES", "7")
	t.Setenv("CHEMREC_OUTPUT_FORMAT", "csv")
	t.Setenv("CHEMREC_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.PubChem.MaxRetries)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnvDefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultPubChemBaseURL, cfg.PubChem.BaseURL)
}
