package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Cost.InputShare)
	assert.Equal(t, 75, cfg.FAQ.Threshold)
	assert.Equal(t, 8, cfg.Fetch.MaxConcurrency)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoadFile_ParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[cost]
input_share = 0.4

[faq]
threshold = 150
min_occurrences = 2

[fetch]
max_concurrency = 0

[pricing.overrides."gpt-4o"]
output_per_mtok = 12.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.Cost.InputShare)
	assert.Equal(t, 75, cfg.FAQ.Threshold, "out-of-range threshold falls back to default")
	assert.Equal(t, 2, cfg.FAQ.MinOccurrences)
	assert.Equal(t, 8, cfg.Fetch.MaxConcurrency)
	require.Contains(t, cfg.Pricing.Overrides, "gpt-4o")
	assert.Equal(t, 12.0, *cfg.Pricing.Overrides["gpt-4o"].OutputPerMTok)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("EDUMETRICS_DATABASE_DRIVER", "postgres")
	t.Setenv("EDUMETRICS_DATABASE_URL", "postgres://localhost/analytics?sslmode=disable")
	t.Setenv("EDUMETRICS_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/analytics?sslmode=disable", cfg.DatabaseDSN())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cost\ninput_share = "), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestSaveAndDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	cfg := DefaultConfig()
	cfg.FAQ.Threshold = 80
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 80, loaded.FAQ.Threshold)
	assert.Equal(t, filepath.Join(dir, "edumetrics", "edumetrics.db"), loaded.DatabaseDSN())
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.General.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.General.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}
