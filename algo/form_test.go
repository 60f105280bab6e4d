package algo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 27, 12, 0, 0, 0, time.UTC)

func fill(t *testing.T, f *Form, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, f.Set(k, v), k)
	}
}

func validDCA(t *testing.T) *Form {
	f := NewForm(KindDCA)
	fill(t, f, map[string]string{
		"name":                 "Alpha",
		"base_order_size":      "100",
		"averaging_order_size": "50",
		"price_deviation":      "2",
		"max_averaging_orders": "3",
		"take_profit":          "2",
	})
	return f
}

func problemKeys(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	keys := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		keys = append(keys, p.Key)
	}
	return keys
}

func TestParseFormDCA(t *testing.T) {
	cfg, err := ParseForm(validDCA(t), now)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, "Alpha", cfg.Name)
	assert.Equal(t, KindDCA, cfg.Kind)
	assert.Equal(t, StatusActive, cfg.Status)
	assert.Equal(t, "Binance", cfg.Exchange)
	assert.Equal(t, "BTC_USDT", cfg.Pair)
	assert.Equal(t, now, cfg.CreatedAt)
	require.NotNil(t, cfg.DCA)
	assert.Nil(t, cfg.Grid)
	assert.Equal(t, "Long", cfg.DCA.Direction)
	assert.Equal(t, 1.0, cfg.DCA.StepMultiplier)
	assert.Equal(t, []float64{2, 4, 6}, cfg.DCA.AveragingDeviations())
	assert.Equal(t, 250.0, cfg.DCA.RequiredBudget())
	assert.Equal(t, 250.0, cfg.Exposure())
	assert.Equal(t, "Single Target", cfg.Exit.TakeProfitType)
	assert.False(t, cfg.Exit.StopLossEnabled)
}

func TestParseFormReportsEveryProblem(t *testing.T) {
	f := NewForm(KindDCA)
	fill(t, f, map[string]string{
		"base_order_size":   "abc",
		"price_deviation":   "150",
		"stop_loss_enabled": "on",
	})

	_, err := ParseForm(f, now)
	keys := problemKeys(t, err)
	assert.Contains(t, keys, "name")
	assert.Contains(t, keys, "base_order_size")
	assert.Contains(t, keys, "averaging_order_size")
	assert.Contains(t, keys, "price_deviation")
	assert.Contains(t, keys, "max_averaging_orders")
	assert.Contains(t, keys, "take_profit")
	assert.Contains(t, keys, "stop_loss")
	assert.Contains(t, err.Error(), "Bot Name: is required")
}

func TestParseFormMaxUsageBelowBudget(t *testing.T) {
	f := validDCA(t)
	fill(t, f, map[string]string{"max_usage": "200"})

	_, err := ParseForm(f, now)
	assert.Equal(t, []string{"max_usage"}, problemKeys(t, err))

	fill(t, f, map[string]string{"max_usage": "250"})
	cfg, err := ParseForm(f, now)
	require.NoError(t, err)
	assert.Equal(t, 250.0, cfg.Exposure())
}

func TestParseFormGrid(t *testing.T) {
	f := NewForm(KindGrid)
	fill(t, f, map[string]string{
		"name":         "Range",
		"pair":         "eth_usdt",
		"lower_price":  "100",
		"upper_price":  "200",
		"levels":       "5",
		"order_volume": "10",
		"take_profit":  "1",
	})

	cfg, err := ParseForm(f, now)
	require.NoError(t, err)
	require.NotNil(t, cfg.Grid)
	assert.Equal(t, "ETH_USDT", cfg.Pair)
	assert.Equal(t, []float64{100, 125, 150, 175, 200}, cfg.Grid.GridPrices())
	assert.InDelta(t, 25.0, cfg.Grid.StepPercent(), 1e-9)
	assert.Equal(t, 50.0, cfg.Exposure())

	fill(t, f, map[string]string{"upper_price": "90", "levels": "1"})
	_, err = ParseForm(f, now)
	keys := problemKeys(t, err)
	assert.ElementsMatch(t, []string{"upper_price", "levels"}, keys)
}

func TestParseFormSignalPairs(t *testing.T) {
	f := NewForm(KindSignal)
	assert.Equal(t, "BTC_USDT", f.Value("pairs"))

	fill(t, f, map[string]string{
		"name":            "Signals",
		"pairs":           "sol/usdt, eth_usdt,",
		"max_usage":       "500",
		"price_deviation": "1",
		"max_entries":     "3",
		"take_profit":     "3",
	})
	cfg, err := ParseForm(f, now)
	require.NoError(t, err)
	require.NotNil(t, cfg.Signal)
	assert.Equal(t, []string{"SOL_USDT", "ETH_USDT"}, cfg.Signal.Pairs)
	assert.Equal(t, "SOL_USDT", cfg.Pair)

	fill(t, f, map[string]string{"pairs": "bitcoin"})
	_, err = ParseForm(f, now)
	assert.Equal(t, []string{"pairs", "pairs"}, problemKeys(t, err))
}

func TestParseFormNameTooLong(t *testing.T) {
	f := validDCA(t)
	fill(t, f, map[string]string{"name": "abcdefghijabcdefghijabcdefghijabcdefghijX"})
	_, err := ParseForm(f, now)
	assert.Equal(t, []string{"name"}, problemKeys(t, err))
}

func TestFormEditing(t *testing.T) {
	f := NewForm(KindDCA)

	assert.Equal(t, "name", f.Focused().Key)
	f.Input("Bot 1")
	f.Backspace()
	assert.Equal(t, "Bot ", f.Field("name").Value)

	f.Next()
	assert.Equal(t, "exchange", f.Focused().Key)
	f.Input("x")
	assert.Equal(t, "Binance", f.Value("exchange"))
	f.Cycle(-1)
	assert.Equal(t, "Bitfinex", f.Value("exchange"))
	f.Cycle(1)
	assert.Equal(t, "Binance", f.Value("exchange"))

	for f.Focused().Key != "base_order_size" {
		f.Next()
	}
	f.Input("1a2.3.4")
	assert.Equal(t, "12.34", f.Value("base_order_size"))
	f.Clear()
	assert.Equal(t, "", f.Value("base_order_size"))

	f.Focus = 0
	f.Prev()
	assert.Equal(t, "max_hold_hours", f.Focused().Key)
	f.Input("4.5")
	assert.Equal(t, "45", f.Value("max_hold_hours"))

	assert.Error(t, f.Set("exchange", "Kraken"))
	assert.Error(t, f.Set("nope", "1"))
	require.NoError(t, f.Set("exchange", "kucoin"))
	assert.Equal(t, "KuCoin", f.Value("exchange"))

	assert.True(t, f.Field("trailing").IsToggle())
	assert.False(t, f.Field("exchange").IsToggle())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Grid ")
	require.NoError(t, err)
	assert.Equal(t, KindGrid, k)
	assert.Equal(t, "Grid Bot", k.Title())

	_, err = ParseKind("martingale")
	assert.Error(t, err)
}
