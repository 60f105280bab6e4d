package assistant

import (
	"fmt"
	"strings"

	"cryptosage/algo"
)

type rule struct {
	keywords []string
	answer   func(input string, mc MarketContext) string
}

// Rules are tried in order; the first one with a matching keyword answers.
var rules = []rule{
	{[]string{"dca", "dollar cost", "averag"}, func(string, MarketContext) string {
		return "A DCA Bot buys a base order, then adds averaging orders each time price moves " +
			"against you by the price deviation (scaled by the step multiplier). " +
			"Open the Trade tab and press 'd' to fill one in, or ctrl+p to apply a preset."
	}},
	{[]string{"grid"}, func(string, MarketContext) string {
		return "A Grid Bot spreads orders evenly between a lower and an upper price and trades " +
			"the range. Pick a range that covers recent swings and 10 to 40 levels. " +
			"Open the Trade tab and press 'g' to set one up."
	}},
	{[]string{"signal"}, func(string, MarketContext) string {
		return "A Signal Bot enters on external signals for a list of pairs, up to a maximum " +
			"number of entries. Press 's' on the Trade tab to configure one."
	}},
	{[]string{"preset", "risk"}, func(string, MarketContext) string {
		presets := algo.PresetRiskSettings()
		lines := []string{"Presets fill in take profit, stop loss and order spacing:"}
		for _, name := range algo.PresetNames() {
			p := presets[name]
			sl := "no stop loss"
			if p.StopLoss > 0 {
				sl = fmt.Sprintf("%.1f%% stop loss", p.StopLoss)
			}
			lines = append(lines, fmt.Sprintf("- %s: %.1f%% take profit, %s, %d grid levels", name, p.TakeProfit, sl, p.GridLevels))
		}
		return strings.Join(lines, "\n")
	}},
	{[]string{"sentiment", "fear", "greed", "mood"}, func(_ string, mc MarketContext) string {
		if mc.Sentiment == nil {
			return "Sentiment data hasn't loaded yet. It appears on the Home tab."
		}
		s := mc.Sentiment
		msg := fmt.Sprintf("The Fear & Greed index is %d (%s). %s", s.Now.Value, s.Now.Classification, s.Insight())
		if s.Yesterday != nil {
			msg += fmt.Sprintf(" That is %+d since yesterday.", s.Trend())
		}
		return msg
	}},
	{[]string{"my bots", "bots", "running"}, func(_ string, mc MarketContext) string {
		switch mc.ActiveBots {
		case 0:
			return "You have no active bots. Would you like to configure a DCA Bot or a Grid Bot?"
		case 1:
			return "You have 1 active bot. Press 'b' on the Trade tab to manage it."
		default:
			return fmt.Sprintf("You have %d active bots. Press 'b' on the Trade tab to manage them.", mc.ActiveBots)
		}
	}},
	{[]string{"price", "trading at", "how much", "chart"}, func(_ string, mc MarketContext) string {
		return priceAnswer(mc)
	}},
	{[]string{"hello", "hi", "hey", "help"}, func(string, MarketContext) string {
		return "I can explain DCA, Grid and Signal bots, list risk presets, and summarise the " +
			"price and sentiment you are looking at. Try \"grid bot\", \"presets\" or \"sentiment\"."
	}},
}

func priceAnswer(mc MarketContext) string {
	symbol := mc.Symbol
	if symbol == "" {
		symbol = "BTC"
	}
	if !mc.HasPrice {
		return fmt.Sprintf("I don't have a price for %s yet. Open the Trade tab to load the chart.", symbol)
	}
	msg := fmt.Sprintf("%s is trading at $%s.", symbol, formatPrice(mc.LastPrice))
	if mc.Interval != "" {
		msg += fmt.Sprintf(" Over the %s chart it moved %+.2f%%.", mc.Interval, mc.ChangePct)
	}
	return msg
}

func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.0f", p)
	case p >= 1:
		return fmt.Sprintf("%.2f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}

func matches(input, keyword string) bool {
	if strings.Contains(keyword, " ") || len(keyword) > 3 {
		return strings.Contains(input, keyword)
	}
	for _, w := range strings.FieldsFunc(input, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if w == keyword {
			return true
		}
	}
	return false
}

// Respond picks an answer for input. Short keywords must match a whole
// word so "hi" does not fire on "this".
func Respond(input string, mc MarketContext) string {
	lower := strings.ToLower(input)
	for _, r := range rules {
		for _, k := range r.keywords {
			if matches(lower, k) {
				return r.answer(input, mc)
			}
		}
	}
	if mc.Symbol != "" && matches(lower, strings.ToLower(mc.Symbol)) {
		return priceAnswer(mc)
	}
	return "I'm not sure about that one. I can help configure a DCA Bot, a Grid Bot or a " +
		"Signal Bot, or summarise the current price and sentiment."
}
