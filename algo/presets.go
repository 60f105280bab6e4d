package algo

import (
	"fmt"
	"sort"
	"strings"
)

// RiskSettings are the numbers a preset writes into a form.
type RiskSettings struct {
	TakeProfit         float64 // percent
	StopLoss           float64 // percent, 0 leaves stop loss off
	PriceDeviation     float64 // percent
	MaxAveragingOrders int
	StepMultiplier     float64
	GridLevels         int
	MaxEntries         int
}

// PresetRiskSettings provides the named presets.
func PresetRiskSettings() map[string]RiskSettings {
	return map[string]RiskSettings{
		"conservative": {
			TakeProfit:         1.5,
			StopLoss:           3,
			PriceDeviation:     2,
			MaxAveragingOrders: 3,
			StepMultiplier:     1.2,
			GridLevels:         10,
			MaxEntries:         2,
		},
		"moderate": {
			TakeProfit:         2.5,
			StopLoss:           5,
			PriceDeviation:     1.5,
			MaxAveragingOrders: 5,
			StepMultiplier:     1.4,
			GridLevels:         20,
			MaxEntries:         3,
		},
		"aggressive": {
			TakeProfit:         4,
			PriceDeviation:     1,
			MaxAveragingOrders: 8,
			StepMultiplier:     1.6,
			GridLevels:         40,
			MaxEntries:         5,
		},
	}
}

// PresetNames lists the presets in a stable order.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for name := range PresetRiskSettings() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// ApplyPreset fills the risk fields of f from the named preset. Fields the
// form does not have are skipped.
func ApplyPreset(f *Form, preset string) error {
	settings, exists := PresetRiskSettings()[strings.ToLower(preset)]
	if !exists {
		return fmt.Errorf("preset '%s' not found. Available: %s", preset, strings.Join(PresetNames(), ", "))
	}

	set := func(key, value string) {
		if f.Field(key) != nil {
			_ = f.Set(key, value)
		}
	}

	set("take_profit", formatNumber(settings.TakeProfit))
	if settings.StopLoss > 0 {
		set("stop_loss_enabled", "On")
		set("stop_loss", formatNumber(settings.StopLoss))
	} else {
		set("stop_loss_enabled", "Off")
		set("stop_loss", "")
	}
	set("price_deviation", formatNumber(settings.PriceDeviation))
	set("max_averaging_orders", fmt.Sprint(settings.MaxAveragingOrders))
	set("step_multiplier", formatNumber(settings.StepMultiplier))
	set("levels", fmt.Sprint(settings.GridLevels))
	set("max_entries", fmt.Sprint(settings.MaxEntries))
	return nil
}
