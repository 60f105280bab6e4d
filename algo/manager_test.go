package algo

import (
	"context"
	"testing"
	"time"

	"cryptosage/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxExposure float64) *Manager {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	m := NewManager(store, maxExposure, nil)
	m.now = func() time.Time { return now }
	return m
}

func parsed(t *testing.T, name string) BotConfig {
	t.Helper()
	f := validDCA(t)
	require.NoError(t, f.Set("name", name))
	cfg, err := ParseForm(f, now)
	require.NoError(t, err)
	return cfg
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 0)

	bots, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bots)

	alpha, err := m.Create(ctx, parsed(t, "Alpha"))
	require.NoError(t, err)
	_, err = m.Create(ctx, parsed(t, "Beta"))
	require.NoError(t, err)

	_, err = m.Create(ctx, parsed(t, "alpha"))
	assert.ErrorIs(t, err, ErrDuplicateBot)

	bots, err = m.List(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 2)
	assert.Equal(t, "Alpha", bots[0].Name)

	stopped, err := m.Stop(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, stopped.Status)
	require.NotNil(t, stopped.StoppedAt)
	assert.Equal(t, now, *stopped.StoppedAt)

	again, err := m.Stop(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, stopped, again)

	found, err := m.Find(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, found.Status)

	require.NoError(t, m.Delete(ctx, alpha.ID))
	assert.ErrorIs(t, m.Delete(ctx, alpha.ID), ErrBotNotFound)
	_, err = m.Stop(ctx, "missing")
	assert.ErrorIs(t, err, ErrBotNotFound)
	_, err = m.Find(ctx, "Alpha")
	assert.ErrorIs(t, err, ErrBotNotFound)

	bots, err = m.List(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, "Beta", bots[0].Name)
}

func TestManagerExposureLimit(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 600)

	first, err := m.Create(ctx, parsed(t, "One"))
	require.NoError(t, err)
	_, err = m.Create(ctx, parsed(t, "Two"))
	require.NoError(t, err)

	_, err = m.Create(ctx, parsed(t, "Three"))
	assert.ErrorIs(t, err, ErrExposureLimit)

	// stopped bots no longer count
	_, err = m.Stop(ctx, first.ID)
	require.NoError(t, err)
	_, err = m.Create(ctx, parsed(t, "Three"))
	require.NoError(t, err)

	bots, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, CalculateTotalExposure(bots))
}

func TestApplyPreset(t *testing.T) {
	f := validDCA(t)
	require.NoError(t, ApplyPreset(f, "Moderate"))

	assert.Equal(t, "2.5", f.Value("take_profit"))
	assert.Equal(t, "On", f.Value("stop_loss_enabled"))
	assert.Equal(t, "5", f.Value("stop_loss"))
	assert.Equal(t, "1.5", f.Value("price_deviation"))
	assert.Equal(t, "5", f.Value("max_averaging_orders"))
	assert.Equal(t, "1.4", f.Value("step_multiplier"))

	cfg, err := ParseForm(f, now)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Exit.StopLoss)

	require.NoError(t, ApplyPreset(f, "aggressive"))
	assert.Equal(t, "Off", f.Value("stop_loss_enabled"))
	assert.Equal(t, "", f.Value("stop_loss"))

	g := NewForm(KindGrid)
	require.NoError(t, ApplyPreset(g, "conservative"))
	assert.Equal(t, "10", g.Value("levels"))
	assert.Equal(t, "1.5", g.Value("take_profit"))

	err = ApplyPreset(g, "yolo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggressive, conservative, moderate")
	assert.Equal(t, []string{"aggressive", "conservative", "moderate"}, PresetNames())
}

func TestAveragingDeviationsCap(t *testing.T) {
	d := DCASettings{PriceDeviation: 1, StepMultiplier: 2, MaxAveragingOrders: 4, MaxAveragingDeviation: 10}
	assert.Equal(t, []float64{1, 3, 7}, d.AveragingDeviations())

	d.MaxAveragingDeviation = 0
	assert.Equal(t, []float64{1, 3, 7, 15}, d.AveragingDeviations())
}
