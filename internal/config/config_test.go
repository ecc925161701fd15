package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lierrors "github.com/loreindex/loreindex/internal/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.Search.Enabled)
	assert.Equal(t, DefaultModel, cfg.Search.Model)
	assert.Equal(t, DefaultMaxResults, cfg.Search.MaxResults)
	assert.Equal(t, DefaultTokenBudget, cfg.Search.TokenBudget)
	assert.Equal(t, DefaultTick, cfg.TickInterval())
	assert.Equal(t, DefaultQuietPeriod, cfg.QuietPeriod())
}

func TestLoad_ReadsYAMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `search:
  enabled: true
  api_key: c2stdGVzdA==
  max_results: 5
  excluded_paths:
    - "notes/private/"
    - "*.tmp.md"
scheduler:
  tick_interval: 2s
  quiet_period: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, DefaultModel, cfg.Search.Model, "unset model falls back to default")
	assert.Equal(t, []string{"notes/private/", "*.tmp.md"}, cfg.Search.ExcludedPaths)
	assert.Equal(t, 2*time.Second, cfg.TickInterval())
	assert.Equal(t, 30*time.Second, cfg.QuietPeriod())
}

func TestLoad_MalformedYAMLIsConfigError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("search: [oops"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, lierrors.ErrCodeConfigInvalid, lierrors.GetCode(err))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOREINDEX_ENABLED", "true")
	t.Setenv("LOREINDEX_MODEL", "voyage-3")
	t.Setenv("LOREINDEX_API_KEY", "sk-raw-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "voyage-3", cfg.Search.Model)

	key, err := cfg.ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-raw-key", key)
}

func TestSearchAvailable(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		key     string
		want    bool
	}{
		{"disabled without key", false, "", false},
		{"enabled without key", true, "", false},
		{"enabled with whitespace key", true, "   ", false},
		{"disabled with key", false, "c2stdGVzdA==", false},
		{"enabled with key", true, "c2stdGVzdA==", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Search.Enabled = tt.enabled
			cfg.Search.APIKeyEncoded = tt.key
			assert.Equal(t, tt.want, cfg.SearchAvailable())
		})
	}
}

func TestDecodeAPIKey(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("pa-secret"))

	key, err := DecodeAPIKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, "pa-secret", key)

	_, err = DecodeAPIKey("%%%not-base64%%%")
	require.Error(t, err)
	assert.Equal(t, lierrors.ErrCodeCredentialInvalid, lierrors.GetCode(err))
}

func TestResolveAPIKey_MissingCredential(t *testing.T) {
	cfg := Default()

	_, err := cfg.ResolveAPIKey()
	require.Error(t, err)
	assert.Equal(t, lierrors.ErrCodeCredentialMissing, lierrors.GetCode(err))
}

func TestSave_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Search.Enabled = true
	cfg.Search.APIKeyEncoded = "c2stdGVzdA=="
	cfg.Scheduler.TickInterval = "15s"

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, loaded.Search.Enabled)
	assert.Equal(t, 15*time.Second, loaded.TickInterval())
}
