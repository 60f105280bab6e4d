package chart

import (
	"fmt"
	"strings"
)

// Interval is a chart range selectable by the user.
type Interval struct {
	Label string // shown in the selector
	Code  string // exchange kline interval
	Limit int    // number of klines to request
	Axis  string // time layout for axis labels
}

var (
	Live       = Interval{"LIVE", "1m", DefaultWindow, "3:04 PM"}
	OneMin     = Interval{"1m", "1m", 60, "3:04 PM"}
	FiveMin    = Interval{"5m", "5m", 48, "3:04 PM"}
	FifteenMin = Interval{"15m", "15m", 24, "3:04 PM"}
	ThirtyMin  = Interval{"30m", "30m", 24, "3:04 PM"}
	OneHour    = Interval{"1H", "1h", 48, "3PM"}
	FourHour   = Interval{"4H", "4h", 120, "3PM"}
	OneDay     = Interval{"1D", "1d", 60, "3PM"}
	OneWeek    = Interval{"1W", "1w", 52, "Jan 2"}
	OneMonth   = Interval{"1M", "1M", 12, "Jan 2"}
	ThreeMonth = Interval{"3M", "1d", 90, "Jan 2"}
	OneYear    = Interval{"1Y", "1d", 365, "Jan 2006"}
	ThreeYear  = Interval{"3Y", "3d", 365, "Jan 2006"}
	All        = Interval{"ALL", "1w", 999, "2006"}
)

// MaxKlineLimit is the largest limit the klines endpoint accepts.
const MaxKlineLimit = 1000

var intervals = []Interval{
	Live, OneMin, FiveMin, FifteenMin, ThirtyMin, OneHour, FourHour,
	OneDay, OneWeek, OneMonth, ThreeMonth, OneYear, ThreeYear, All,
}

// Intervals returns the selector order.
func Intervals() []Interval {
	out := make([]Interval, len(intervals))
	copy(out, intervals)
	return out
}

// ParseInterval looks an interval up by label. Labels are matched
// case-sensitively first since "1m" and "1M" differ.
func ParseInterval(label string) (Interval, error) {
	for _, iv := range intervals {
		if iv.Label == label {
			return iv, nil
		}
	}
	for _, iv := range intervals {
		if strings.EqualFold(iv.Label, label) && iv.Label != "1m" && iv.Label != "1M" {
			return iv, nil
		}
	}
	return Interval{}, fmt.Errorf("unknown interval %q", label)
}

// RequestLimit is Limit clamped to what the exchange serves in one request.
func (iv Interval) RequestLimit() int {
	return max(1, min(iv.Limit, MaxKlineLimit))
}

func (iv Interval) IsLive() bool { return iv.Label == Live.Label }

// Next returns the interval after iv in selector order, wrapping around.
func (iv Interval) Next() Interval {
	for i, c := range intervals {
		if c.Label == iv.Label {
			return intervals[(i+1)%len(intervals)]
		}
	}
	return intervals[0]
}

// Prev returns the interval before iv in selector order, wrapping around.
func (iv Interval) Prev() Interval {
	for i, c := range intervals {
		if c.Label == iv.Label {
			return intervals[(i-1+len(intervals))%len(intervals)]
		}
	}
	return intervals[0]
}
