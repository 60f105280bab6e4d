package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Quote is the market price of a coin.
type Quote struct {
	Price        float64
	ChangePct24h float64
}

// Position is a valued holding.
type Position struct {
	Holding      Holding
	Priced       bool
	Price        decimal.Decimal
	Value        decimal.Decimal
	DayChange    decimal.Decimal
	ChangePct24h float64
	PnL          decimal.Decimal // zero when the cost basis is unknown
	Fraction     float64         // share of the portfolio total
}

// Valuation is the portfolio at current prices.
type Valuation struct {
	Total        decimal.Decimal
	DayChange    decimal.Decimal
	DayChangePct float64
	Positions    []Position
}

var hundred = decimal.NewFromInt(100)

// Value prices holdings with quotes keyed by coin id. Holdings without a
// quote are listed with a zero value. Positions are ordered by value,
// largest first, and their fractions sum to 1 whenever the total is
// positive.
func Value(holdings []Holding, quotes map[string]Quote) Valuation {
	v := Valuation{
		Total:     decimal.Zero,
		DayChange: decimal.Zero,
		Positions: make([]Position, 0, len(holdings)),
	}

	for _, h := range holdings {
		p := Position{
			Holding:   h,
			Price:     decimal.Zero,
			Value:     decimal.Zero,
			DayChange: decimal.Zero,
			PnL:       decimal.Zero,
		}
		if q, ok := quotes[h.CoinID]; ok && q.Price > 0 {
			p.Priced = true
			p.Price = decimal.NewFromFloat(q.Price)
			p.Value = h.Amount.Mul(p.Price)
			p.ChangePct24h = q.ChangePct24h
			p.DayChange = dayChange(p.Value, q.ChangePct24h)
			if h.CostBasis.IsPositive() {
				p.PnL = p.Value.Sub(h.CostBasis)
			}
		}
		v.Total = v.Total.Add(p.Value)
		v.DayChange = v.DayChange.Add(p.DayChange)
		v.Positions = append(v.Positions, p)
	}

	if v.Total.IsPositive() {
		for i := range v.Positions {
			v.Positions[i].Fraction = v.Positions[i].Value.Div(v.Total).InexactFloat64()
		}
		prev := v.Total.Sub(v.DayChange)
		if prev.IsPositive() {
			v.DayChangePct = v.DayChange.Div(prev).Mul(hundred).InexactFloat64()
		}
	}

	sort.SliceStable(v.Positions, func(i, j int) bool {
		return v.Positions[i].Value.GreaterThan(v.Positions[j].Value)
	})
	return v
}

// dayChange is the value gained over 24h given the current value and the
// percentage move: value - value/(1+pct/100).
func dayChange(value decimal.Decimal, pct float64) decimal.Decimal {
	factor := decimal.NewFromFloat(pct).Div(hundred).Add(decimal.NewFromInt(1))
	if !factor.IsPositive() {
		return decimal.Zero
	}
	return value.Sub(value.Div(factor))
}
