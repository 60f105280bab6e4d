package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.binance.com", cfg.API.BinanceURL)
	assert.Equal(t, "https://api.binance.us", cfg.API.BinanceFallbackURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 300, cfg.Chart.LiveWindow)
	assert.Equal(t, 10, cfg.Chart.HeatmapTop)
	assert.Equal(t, 60*time.Second, cfg.Refresh.Heatmap)
	assert.Equal(t, 120*time.Second, cfg.Refresh.Sentiment)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Zero(t, cfg.Bots.MaxExposure)
	assert.Equal(t, filepath.Join(home, ".config", "cryptosage"), cfg.Store.Dir)
	assert.Equal(t, filepath.Join(home, ".config", "cryptosage", "cryptosage.log"), cfg.Log.File)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("API_BINANCE_URL", "http://localhost:9000")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("CHART_LIVE_WINDOW", "120")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("STORE_DIR", "/tmp/sage")
	t.Setenv("BOTS_MAX_EXPOSURE", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.API.BinanceURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 120, cfg.Chart.LiveWindow)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "/tmp/sage", cfg.Store.Dir)
	assert.Equal(t, 2500.0, cfg.Bots.MaxExposure)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("REFRESH_HEATMAP", "soon")

	_, err := Load()
	assert.Error(t, err)
}
