package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SentimentStyle colors a Fear & Greed value by its band.
func SentimentStyle(value int) lipgloss.Style {
	var c string
	switch {
	case value < 25:
		c = "#FF5F87"
	case value < 50:
		c = "#FFA500"
	case value < 75:
		c = "#F4D03F"
	default:
		c = "#04B575"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
}

// RenderGauge draws value (0-100) as a bar width cells wide followed by
// the number.
func RenderGauge(value, width int) string {
	value = max(0, min(100, value))
	if width < 1 {
		width = 1
	}
	filled := value * width / 100
	bar := SentimentStyle(value).Render(strings.Repeat("█", filled)) +
		DisabledStyle.Render(strings.Repeat("░", width-filled))
	return bar + " " + SentimentStyle(value).Render(fmt.Sprintf("%3d", value))
}
