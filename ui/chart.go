package ui

import (
	"math"
	"strings"

	"cryptosage/chart"

	"github.com/charmbracelet/lipgloss"
)

const (
	plotDot  = '•'
	plotLine = '│'
)

// sample picks n points spread evenly across pts, keeping both ends.
func sample(pts []chart.Point, n int) []chart.Point {
	if n >= len(pts) {
		return pts
	}
	if n <= 1 {
		return pts[len(pts)-1:]
	}
	out := make([]chart.Point, n)
	for i := range out {
		out[i] = pts[i*(len(pts)-1)/(n-1)]
	}
	return out
}

// priceAt interpolates the series at column x of a plot width columns wide.
func priceAt(pts []chart.Point, x, width int) float64 {
	if len(pts) == 1 || width <= 1 {
		return pts[len(pts)-1].Price
	}
	f := float64(x) * float64(len(pts)-1) / float64(width-1)
	i := int(f)
	if i >= len(pts)-1 {
		return pts[len(pts)-1].Price
	}
	return pts[i].Price + (pts[i+1].Price-pts[i].Price)*(f-float64(i))
}

// row maps price into [0, height-1], 0 being the top line.
func row(price float64, d chart.Domain, height int) int {
	if d.Hi <= d.Lo || height <= 1 {
		return height / 2
	}
	frac := (price - d.Lo) / (d.Hi - d.Lo)
	r := int(math.Round(frac * float64(height-1)))
	if r < 0 {
		r = 0
	}
	if r > height-1 {
		r = height - 1
	}
	return height - 1 - r
}

func axisLabel(v float64) string {
	return strings.TrimPrefix(PriceText(v), "$")
}

// RenderLineChart draws pts in a width x height box: a price axis on the
// left, the series, and time labels formatted with iv.Axis underneath.
func RenderLineChart(pts []chart.Point, iv chart.Interval, width, height int) string {
	if len(pts) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, DisabledStyle.Render("No data"))
	}

	plotH := height - 1
	if plotH < 2 {
		return Sparkline(pts, width)
	}

	d := chart.YDomain(pts)
	labels := make([]string, plotH)
	labels[0] = axisLabel(d.Hi)
	labels[plotH-1] = axisLabel(d.Lo)
	if plotH >= 5 {
		labels[plotH/2] = axisLabel((d.Hi + d.Lo) / 2)
	}
	labelW := 0
	for _, l := range labels {
		labelW = max(labelW, len(l))
	}

	plotW := width - labelW - 1
	if plotW < 2 {
		return Sparkline(pts, width)
	}

	grid := make([][]rune, plotH)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", plotW))
	}
	prev := -1
	for x := 0; x < plotW; x++ {
		y := row(priceAt(pts, x, plotW), d, plotH)
		if prev >= 0 {
			for yy := min(prev, y) + 1; yy < max(prev, y); yy++ {
				grid[yy][x] = plotLine
			}
		}
		grid[y][x] = plotDot
		prev = y
	}

	lineStyle := ChangeStyle(chart.Change(pts))
	var b strings.Builder
	for y := range grid {
		b.WriteString(DisabledStyle.Render(padLeft(labels[y], labelW)))
		b.WriteString(DisabledStyle.Render("┤"))
		b.WriteString(lineStyle.Render(string(grid[y])))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(" ", labelW+1))
	b.WriteString(DisabledStyle.Render(timeAxis(pts, iv, plotW)))
	return b.String()
}

// timeAxis spreads the first, middle and last timestamps across width.
func timeAxis(pts []chart.Point, iv chart.Interval, width int) string {
	first := pts[0].Time.Format(iv.Axis)
	last := pts[len(pts)-1].Time.Format(iv.Axis)
	if len(first)+len(last)+1 > width {
		return Truncate(first, width)
	}
	line := []rune(first + strings.Repeat(" ", width-len(first)-len(last)) + last)
	mid := pts[len(pts)/2].Time.Format(iv.Axis)
	start := (width - len(mid)) / 2
	if start > len(first) && start+len(mid) < width-len(last) {
		copy(line[start:], []rune(mid))
	}
	return string(line)
}

func padLeft(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders pts as a single row of block characters.
func Sparkline(pts []chart.Point, width int) string {
	if len(pts) == 0 || width <= 0 {
		return ""
	}
	shown := sample(pts, width)
	lo, hi := shown[0].Price, shown[0].Price
	for _, p := range shown {
		lo, hi = math.Min(lo, p.Price), math.Max(hi, p.Price)
	}
	out := make([]rune, len(shown))
	for i, p := range shown {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((p.Price - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return ChangeStyle(chart.Change(pts)).Render(string(out))
}
