package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	result := cfg.Validate()
	assert.False(t, result.HasErrors(), result.Error())
	assert.Equal(t, 200, cfg.Repo.MaxCommits)
	assert.Equal(t, "package.json", cfg.Repo.Manifest)
	assert.Equal(t, 3.0, cfg.Scoring.MinScore)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
repo:
  max_commits: 50
  timezone: Europe/Amsterdam
scoring:
  min_score: 4.5
storage:
  type: none
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Repo.MaxCommits)
	assert.Equal(t, "Europe/Amsterdam", cfg.Repo.Timezone)
	assert.Equal(t, 4.5, cfg.Scoring.MinScore)
	assert.Equal(t, "none", cfg.Storage.Type)
	// untouched keys keep their defaults
	assert.Equal(t, "package.json", cfg.Repo.Manifest)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", loc.String())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GIT_TIMELINE_MAX_COMMITS", "17")
	t.Setenv("GIT_TIMELINE_ENRICH", "true")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/timeline")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, 17, cfg.Repo.MaxCommits)
	assert.True(t, cfg.Enrich.Enabled)
	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, "postgres://localhost/timeline", cfg.Storage.PostgresDSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"non-positive max commits", func(c *Config) { c.Repo.MaxCommits = 0 }, "max_commits"},
		{"unknown timezone", func(c *Config) { c.Repo.Timezone = "Mars/Olympus" }, "timezone"},
		{"empty manifest", func(c *Config) { c.Repo.Manifest = " " }, "manifest"},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }, "postgres_dsn"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }, "storage.type"},
		{"bad registry url", func(c *Config) {
			c.Enrich.Enabled = true
			c.Enrich.RegistryURL = "not a url"
		}, "registry_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			result := cfg.Validate()
			require.True(t, result.HasErrors())
			assert.Contains(t, result.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Repo.MaxCommits = 42
	cfg.Enrich.Timeout = 5 * time.Second
	cfg.Storage.Type = "none"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Repo.MaxCommits)
	assert.Equal(t, "none", loaded.Storage.Type)
}
