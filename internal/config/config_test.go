package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "locfeed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 60*time.Second, cfg.Location.Timeout)
	assert.Equal(t, 2500*time.Millisecond, cfg.Feed.IndicatorDelay)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeYAML(t, `
location:
  url: http://geo.example.com/api.php
  timeout: 5s
feed:
  base_url: http://feed.example.com
  format: html
  poll_interval: 10s
geoip:
  db: /tmp/country.mmdb
log:
  level: debug
`)
	t.Setenv("FEED_BASE_URL", "https://override.example.com")
	t.Setenv("INDICATOR_DELAY", "1s")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://geo.example.com/api.php", cfg.Location.URL)
	assert.Equal(t, 5*time.Second, cfg.Location.Timeout)
	assert.Equal(t, "https://override.example.com", cfg.Feed.BaseURL)
	assert.Equal(t, "html", cfg.Feed.Format)
	assert.Equal(t, 10*time.Second, cfg.Feed.PollInterval)
	assert.Equal(t, time.Second, cfg.Feed.IndicatorDelay)
	assert.Equal(t, "/api/get_updates", cfg.Feed.UpdatesPath)
	assert.Equal(t, "/tmp/country.mmdb", cfg.GeoIP.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "locfeed.log", cfg.Log.File)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "location: [not, a, map]"))
	assert.Error(t, err)

	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Location.URL = "api.php"
	cfg.Feed.BaseURL = "ftp://feed"
	cfg.Location.Timeout = 0
	cfg.Feed.UpdatesPath = "updates"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "location.url")
	assert.ErrorContains(t, err, "feed.base_url")
	assert.ErrorContains(t, err, "location.timeout")
	assert.ErrorContains(t, err, "feed.updates_path")
}
