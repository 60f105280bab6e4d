package heatmap

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ChangeRange is the absolute percentage at which the color scale saturates.
const ChangeRange = 10.0

// Color maps a 24h change to a hex color running from red at -10% through
// yellow to green at +10%.
func Color(pct float64) string {
	if math.IsNaN(pct) {
		pct = 0
	}
	capped := math.Min(math.Max(pct, -ChangeRange), ChangeRange)
	t := (capped + ChangeRange) / (2 * ChangeRange)
	return colorful.Hsv(0.33*t*360, 0.8, 0.9).Hex()
}

// TextColor picks black or white for legible labels on Color(pct).
func TextColor(pct float64) string {
	c, err := colorful.Hex(Color(pct))
	if err != nil {
		return "#FFFFFF"
	}
	if 0.299*c.R+0.587*c.G+0.114*c.B > 0.6 {
		return "#000000"
	}
	return "#FFFFFF"
}
