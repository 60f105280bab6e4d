package ui

import (
	"fmt"
	"math"
	"strings"

	"cryptosage/heatmap"

	"github.com/charmbracelet/lipgloss"
)

type cellBox struct{ x0, y0, x1, y1 int }

func snap(r heatmap.Rect) cellBox {
	return cellBox{
		x0: int(math.Round(r.X)),
		y0: int(math.Round(r.Y)),
		x1: int(math.Round(r.X + r.W)),
		y1: int(math.Round(r.Y + r.H)),
	}
}

// RenderTreemap paints placements laid out in a width x height cell grid.
// Each tile is filled with its change color and labelled with its symbol and
// change when it has room.
func RenderTreemap(placements []heatmap.Placement, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(placements) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, DisabledStyle.Render("No data"))
	}

	owner := make([][]int, height)
	text := make([][]rune, height)
	for y := range owner {
		owner[y] = make([]int, width)
		text[y] = []rune(strings.Repeat(" ", width))
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}

	for i, p := range placements {
		b := snap(p.Rect)
		for y := max(b.y0, 0); y < min(b.y1, height); y++ {
			for x := max(b.x0, 0); x < min(b.x1, width); x++ {
				owner[y][x] = i
			}
		}
		writeLabels(text, b, width, height, p.Tile)
	}

	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; {
			end := x
			for end < width && owner[y][end] == owner[y][x] {
				end++
			}
			seg := string(text[y][x:end])
			if i := owner[y][x]; i >= 0 {
				pct := placements[i].Tile.PctChange
				seg = lipgloss.NewStyle().
					Background(lipgloss.Color(heatmap.Color(pct))).
					Foreground(lipgloss.Color(heatmap.TextColor(pct))).
					Render(seg)
			}
			sb.WriteString(seg)
			x = end
		}
		if y < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// writeLabels centers the symbol, and below it the change, inside b.
func writeLabels(text [][]rune, b cellBox, width, height int, t heatmap.Tile) {
	b.x0, b.y0 = max(b.x0, 0), max(b.y0, 0)
	b.x1, b.y1 = min(b.x1, width), min(b.y1, height)
	w, h := b.x1-b.x0, b.y1-b.y0
	if w < 2 || h < 1 {
		return
	}

	lines := []string{t.Symbol}
	if h >= 2 {
		lines = append(lines, fmt.Sprintf("%+.2f%%", t.PctChange))
	}
	top := b.y0 + (h-len(lines))/2
	for i, l := range lines {
		l = Truncate(l, w)
		start := b.x0 + (w-len([]rune(l)))/2
		copy(text[top+i][start:], []rune(l))
	}
}
