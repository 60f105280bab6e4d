package ui

import (
	"strings"
	"testing"
	"time"

	"cryptosage/chart"
	"cryptosage/heatmap"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommas(t *testing.T) {
	assert.Equal(t, "0.00", Commas(0, 2))
	assert.Equal(t, "999", Commas(999, 0))
	assert.Equal(t, "1,000.50", Commas(1000.5, 2))
	assert.Equal(t, "-1,234,567.9", Commas(-1234567.89, 1))
}

func TestPriceAndCompactText(t *testing.T) {
	assert.Equal(t, "$64,250.10", PriceText(64250.1))
	assert.Equal(t, "$2.5000", PriceText(2.5))
	assert.Equal(t, "$0.000123", PriceText(0.000123))
	assert.Equal(t, "$1.20T", CompactText(1.2e12))
	assert.Equal(t, "$850.00B", CompactText(8.5e11))
	assert.Equal(t, "$12.5K", CompactText(12500))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcd", 3))
	assert.Equal(t, "", Truncate("abcd", 0))
}

func series(prices ...float64) []chart.Point {
	base := time.Date(2025, 3, 27, 9, 0, 0, 0, time.UTC)
	pts := make([]chart.Point, len(prices))
	for i, p := range prices {
		pts[i] = chart.Point{Time: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return pts
}

func TestRenderLineChart(t *testing.T) {
	out := RenderLineChart(series(10, 20, 30, 20, 10), chart.OneMin, 40, 8)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 40)
	}

	assert.Contains(t, lines[0], "30.60")
	assert.Contains(t, lines[6], "9.40")
	assert.Contains(t, lines[7], "9:00 AM")
	assert.Contains(t, lines[7], "9:04 AM")
	assert.Equal(t, 33, strings.Count(out, "•"))
}

func TestRenderLineChartEmpty(t *testing.T) {
	out := RenderLineChart(nil, chart.OneDay, 20, 5)
	assert.Contains(t, out, "No data")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline(series(1, 2, 3), 10))
	assert.Equal(t, 4, lipgloss.Width(Sparkline(series(1, 2, 3, 4, 5, 6, 7, 8), 4)))
	assert.Equal(t, "", Sparkline(nil, 10))
}

func TestRenderGauge(t *testing.T) {
	out := RenderGauge(50, 10)
	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Equal(t, 5, strings.Count(out, "░"))
	assert.True(t, strings.HasSuffix(out, " 50"))

	assert.Equal(t, 10, strings.Count(RenderGauge(150, 10), "█"))
}

func TestRenderTreemap(t *testing.T) {
	tiles := []heatmap.Tile{
		{Symbol: "BTC", PctChange: 2.5, MarketCap: 3},
		{Symbol: "ETH", PctChange: -1, MarketCap: 1},
	}
	placements := heatmap.Layout(tiles, heatmap.Rect{W: 40, H: 8})
	out := RenderTreemap(placements, 40, 8)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	for _, l := range lines {
		assert.Equal(t, 40, lipgloss.Width(l))
	}
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "+2.50%")
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "-1.00%")

	assert.Contains(t, RenderTreemap(nil, 10, 3), "No data")
}
