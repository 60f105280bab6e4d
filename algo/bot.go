package algo

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// BotKind is the trading-bot family.
type BotKind string

const (
	KindDCA    BotKind = "dca"
	KindGrid   BotKind = "grid"
	KindSignal BotKind = "signal"
)

func (k BotKind) Title() string {
	switch k {
	case KindDCA:
		return "DCA Bot"
	case KindGrid:
		return "Grid Bot"
	case KindSignal:
		return "Signal Bot"
	default:
		return string(k)
	}
}

// ParseKind accepts "dca", "grid" or "signal" in any case.
func ParseKind(s string) (BotKind, error) {
	switch k := BotKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDCA, KindGrid, KindSignal:
		return k, nil
	}
	return "", fmt.Errorf("unknown bot kind %q (want dca, grid or signal)", s)
}

// BotStatus is the lifecycle state of a saved bot.
type BotStatus string

const (
	StatusActive  BotStatus = "active"
	StatusStopped BotStatus = "stopped"
)

// BotConfig is a saved bot. Exactly one of DCA, Grid and Signal is set,
// matching Kind.
type BotConfig struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      BotKind         `json:"kind"`
	Exchange  string          `json:"exchange"`
	Pair      string          `json:"pair"`
	Status    BotStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	StoppedAt *time.Time      `json:"stopped_at,omitempty"`
	DCA       *DCASettings    `json:"dca,omitempty"`
	Grid      *GridSettings   `json:"grid,omitempty"`
	Signal    *SignalSettings `json:"signal,omitempty"`
	Exit      ExitSettings    `json:"exit"`
}

// DCASettings averages into a position as price moves against it.
type DCASettings struct {
	Direction             string  `json:"direction"`
	BotType               string  `json:"bot_type"`
	ProfitCurrency        string  `json:"profit_currency"`
	BaseOrderSize         float64 `json:"base_order_size"`
	StartOrderType        string  `json:"start_order_type"`
	StartCondition        string  `json:"start_condition"`
	AveragingOrderSize    float64 `json:"averaging_order_size"`
	PriceDeviation        float64 `json:"price_deviation"` // percent
	MaxAveragingOrders    int     `json:"max_averaging_orders"`
	StepMultiplier        float64 `json:"step_multiplier"`
	MaxUsage              float64 `json:"max_usage"`
	MaxAveragingDeviation float64 `json:"max_averaging_deviation"` // percent, 0 means unlimited
}

// GridSettings places orders at evenly spaced levels inside a range.
type GridSettings struct {
	LowerPrice  float64 `json:"lower_price"`
	UpperPrice  float64 `json:"upper_price"`
	Levels      int     `json:"levels"`
	OrderVolume float64 `json:"order_volume"`
}

// SignalSettings enters on external signals for a set of pairs.
type SignalSettings struct {
	Pairs          []string `json:"pairs"`
	MaxUsage       float64  `json:"max_usage"`
	PriceDeviation float64  `json:"price_deviation"`
	MaxEntries     int      `json:"max_entries"`
}

// ExitSettings are shared by every bot kind.
type ExitSettings struct {
	TakeProfit      float64 `json:"take_profit"` // percent
	TakeProfitType  string  `json:"take_profit_type,omitempty"`
	Trailing        bool    `json:"trailing,omitempty"`
	RevertProfit    bool    `json:"revert_profit,omitempty"`
	StopLossEnabled bool    `json:"stop_loss_enabled"`
	StopLoss        float64 `json:"stop_loss,omitempty"` // percent
	MaxHoldHours    int     `json:"max_hold_hours,omitempty"`
}

// GridPrices returns the order price of every level, lowest first.
func (g GridSettings) GridPrices() []float64 {
	if g.Levels < 2 || g.UpperPrice <= g.LowerPrice {
		return nil
	}
	step := (g.UpperPrice - g.LowerPrice) / float64(g.Levels-1)
	prices := make([]float64, g.Levels)
	for i := range prices {
		prices[i] = g.LowerPrice + step*float64(i)
	}
	prices[len(prices)-1] = g.UpperPrice
	return prices
}

// StepPercent is the spacing between levels relative to the lower price.
func (g GridSettings) StepPercent() float64 {
	if g.Levels < 2 || g.LowerPrice <= 0 {
		return 0
	}
	return (g.UpperPrice - g.LowerPrice) / float64(g.Levels-1) / g.LowerPrice * 100
}

// AveragingDeviations returns the cumulative price deviation, in percent,
// at which each averaging order fires. Step i is PriceDeviation *
// StepMultiplier^i, and the ladder is cut at MaxAveragingDeviation.
func (d DCASettings) AveragingDeviations() []float64 {
	mult := d.StepMultiplier
	if mult <= 0 {
		mult = 1
	}
	out := make([]float64, 0, d.MaxAveragingOrders)
	total := 0.0
	for i := 0; i < d.MaxAveragingOrders; i++ {
		total += d.PriceDeviation * math.Pow(mult, float64(i))
		if d.MaxAveragingDeviation > 0 && total > d.MaxAveragingDeviation {
			break
		}
		out = append(out, total)
	}
	return out
}

// RequiredBudget is the quote amount needed to fill the base order and
// every averaging order.
func (d DCASettings) RequiredBudget() float64 {
	return d.BaseOrderSize + d.AveragingOrderSize*float64(len(d.AveragingDeviations()))
}

// Exposure is the most quote currency a bot can commit.
func (b BotConfig) Exposure() float64 {
	switch {
	case b.DCA != nil:
		if b.DCA.MaxUsage > 0 {
			return b.DCA.MaxUsage
		}
		return b.DCA.RequiredBudget()
	case b.Grid != nil:
		return b.Grid.OrderVolume * float64(b.Grid.Levels)
	case b.Signal != nil:
		return b.Signal.MaxUsage
	}
	return 0
}

// CalculateTotalExposure sums the exposure of active bots.
func CalculateTotalExposure(bots []BotConfig) float64 {
	total := 0.0
	for _, b := range bots {
		if b.Status == StatusActive {
			total += b.Exposure()
		}
	}
	return total
}

// ErrExposureLimit is returned when active bots could commit more than the
// allowed total.
var ErrExposureLimit = errors.New("exposure limit exceeded")

// ValidateExposure checks the active bots against maxTotal. A non-positive
// limit disables the check.
func ValidateExposure(bots []BotConfig, maxTotal float64) error {
	if maxTotal <= 0 {
		return nil
	}
	if total := CalculateTotalExposure(bots); total > maxTotal {
		return fmt.Errorf("%w: total exposure $%.2f exceeds maximum allowed $%.2f", ErrExposureLimit, total, maxTotal)
	}
	return nil
}
