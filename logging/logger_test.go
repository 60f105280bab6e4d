package logging

import (
	"os"
	"path/filepath"
	"testing"

	"cryptosage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := New(config.LogConfig{Level: "debug", File: file})
	require.NoError(t, err)

	logger.Debug("stream started", zap.String("symbol", "BTCUSDT"))
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"stream started"`)
	assert.Contains(t, string(data), `"symbol":"BTCUSDT"`)
	assert.Contains(t, string(data), `"time":`)
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")

	logger, err := New(config.LogConfig{Level: "loud", File: file})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestNewWithoutFile(t *testing.T) {
	logger, err := New(config.LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, OrNop(nil))
}
