package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		label string
		code  string
		limit int
	}{
		{"LIVE", "1m", 300},
		{"live", "1m", 300},
		{"1m", "1m", 60},
		{"1M", "1M", 12},
		{"1h", "1h", 48},
		{"4H", "4h", 120},
		{"3M", "1d", 90},
		{"1Y", "1d", 365},
		{"3Y", "3d", 365},
		{"ALL", "1w", 999},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			iv, err := ParseInterval(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.code, iv.Code)
			assert.Equal(t, tt.limit, iv.Limit)
		})
	}

	_, err := ParseInterval("2D")
	assert.Error(t, err)
}

func TestRequestLimitFitsExchangeMaximum(t *testing.T) {
	for _, iv := range Intervals() {
		assert.LessOrEqual(t, iv.RequestLimit(), MaxKlineLimit, iv.Label)
		assert.Equal(t, iv.Limit, iv.RequestLimit(), iv.Label)
	}
	assert.Equal(t, MaxKlineLimit, Interval{Code: "1d", Limit: 1095}.RequestLimit())
	assert.Equal(t, 1, Interval{Code: "1d"}.RequestLimit())
}

func TestIntervalCycle(t *testing.T) {
	assert.Equal(t, OneMin, Live.Next())
	assert.Equal(t, Live, All.Next())
	assert.Equal(t, All, Live.Prev())
	assert.True(t, Live.IsLive())
	assert.False(t, OneDay.IsLive())
	assert.Len(t, Intervals(), 14)
}

func TestYDomain(t *testing.T) {
	assert.Equal(t, Domain{0, 1}, YDomain(nil))

	d := YDomain([]Point{{Price: 100}, {Price: 200}, {Price: 150}})
	assert.InDelta(t, 97, d.Lo, 1e-9)
	assert.InDelta(t, 203, d.Hi, 1e-9)
}

func TestClosestAndChange(t *testing.T) {
	base := time.Unix(1700000000, 0)
	pts := []Point{
		{Time: base, Price: 100},
		{Time: base.Add(time.Minute), Price: 110},
		{Time: base.Add(2 * time.Minute), Price: 120},
	}

	p, ok := Closest(pts, base.Add(70*time.Second))
	require.True(t, ok)
	assert.Equal(t, 110.0, p.Price)

	_, ok = Closest(nil, base)
	assert.False(t, ok)

	assert.InDelta(t, 20, Change(pts), 1e-9)
	assert.Equal(t, 0.0, Change(pts[:1]))
}
