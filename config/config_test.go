package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig_FileValues(t *testing.T) {
	p := writeConfig(t, `
site:
  url: https://example.com/
server:
  port: 9090
sitemap:
  manifest: app/fresh.gen.ts
  staticdir: app/static
  overrides:
    - action: add
      route: /blog/hello
      changefreq: weekly
      priority: "0.4"
      lastmod: "2024-02-01"
    - action: remove
      route: /admin/*
`)

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://example.com", cfg.BaseURL())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "app/fresh.gen.ts", cfg.Sitemap.Manifest)
	assert.Equal(t, "app/static", cfg.Sitemap.StaticDir)
	assert.Equal(t, []string{"sitemap.xml"}, cfg.Sitemap.Ignore)

	require.Len(t, cfg.Sitemap.Overrides, 2)
	add := cfg.Sitemap.Overrides[0]
	assert.Equal(t, models.ActionAdd, add.Action)
	assert.Equal(t, models.ChangeFreqWeekly, add.ChangeFreq)
	assert.Equal(t, "0.4", add.Priority)
	require.NotNil(t, add.LastMod)
	assert.True(t, add.LastMod.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.ActionRemove, cfg.Sitemap.Overrides[1].Action)
}

func TestLoadConfig_Defaults(t *testing.T) {
	p := writeConfig(t, "site:\n  url: https://example.com\n")
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "freshseo.db", cfg.Database.URL)
	assert.Equal(t, "fresh.gen.ts", cfg.Sitemap.Manifest)
	assert.Equal(t, "static", cfg.Sitemap.StaticDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "site:\n  url: https://example.com\n")
	t.Setenv("FRESHSEO_SERVER_PORT", "7000")
	t.Setenv("FRESHSEO_SITE_URL", "https://env.example.com")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "https://env.example.com", cfg.Site.URL)
}

func TestLoadConfig_EnvOnlyKeys(t *testing.T) {
	p := writeConfig(t, "log:\n  level: debug\n")
	logDir := t.TempDir()
	t.Setenv("FRESHSEO_SITE_URL", "https://env.example.com")
	t.Setenv("FRESHSEO_LOG_DIR", logDir)

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://env.example.com", cfg.Site.URL)
	assert.Equal(t, logDir, cfg.Log.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var cfg Config
	assert.ErrorIs(t, cfg.Validate(), ErrMissingURL)

	cfg.Site.URL = "https://example.com"
	cfg.Sitemap.Overrides = []models.Override{{Action: "bogus", Route: "/"}}
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidAction)
}
