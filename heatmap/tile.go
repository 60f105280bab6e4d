package heatmap

import (
	"encoding/json"
	"sort"
	"strings"
)

// OthersSymbol labels the aggregate of every tile outside the top N.
const OthersSymbol = "Others"

// DefaultTop is how many coins get their own tile.
const DefaultTop = 10

// Tile is one coin on the heat map.
type Tile struct {
	Symbol    string  `json:"symbol"`
	PctChange float64 `json:"price_change_percentage_24h"`
	MarketCap float64 `json:"market_cap"`
}

// UnmarshalJSON tolerates null numbers, which the markets endpoint returns
// for freshly listed coins.
func (t *Tile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Symbol    string   `json:"symbol"`
		PctChange *float64 `json:"price_change_percentage_24h"`
		MarketCap *float64 `json:"market_cap"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Symbol = strings.ToUpper(raw.Symbol)
	t.PctChange, t.MarketCap = 0, 0
	if raw.PctChange != nil {
		t.PctChange = *raw.PctChange
	}
	if raw.MarketCap != nil {
		t.MarketCap = *raw.MarketCap
	}
	return nil
}

// Collapse orders tiles by market cap, largest first, keeps the first top
// and folds the rest into a single Others tile. The Others change is the
// cap-weighted mean of the folded tiles, or 0 when their caps sum to 0.
// The input slice is not modified.
func Collapse(tiles []Tile, top int) []Tile {
	sorted := make([]Tile, len(tiles))
	copy(sorted, tiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MarketCap > sorted[j].MarketCap
	})

	if top < 0 {
		top = 0
	}
	if len(sorted) <= top {
		return sorted
	}

	out := make([]Tile, 0, top+1)
	out = append(out, sorted[:top]...)

	var capSum, weighted float64
	for _, t := range sorted[top:] {
		capSum += t.MarketCap
		weighted += t.PctChange * t.MarketCap
	}
	pct := 0.0
	if capSum > 0 {
		pct = weighted / capSum
	}
	return append(out, Tile{Symbol: OthersSymbol, PctChange: pct, MarketCap: capSum})
}

// Placement pairs a tile with its rectangle.
type Placement struct {
	Tile Tile
	Rect Rect
}

// Layout places tiles inside bounds in the given order, weighting by market
// cap and splitting vertically first. Negative caps count as zero.
func Layout(tiles []Tile, bounds Rect) []Placement {
	weights := make([]float64, len(tiles))
	for i, t := range tiles {
		if t.MarketCap > 0 {
			weights[i] = t.MarketCap
		}
	}

	rects := SliceDice(weights, bounds, false)
	out := make([]Placement, len(tiles))
	for i := range tiles {
		out[i] = Placement{Tile: tiles[i], Rect: rects[i]}
	}
	return out
}
