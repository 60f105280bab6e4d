package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Layout
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EE6FF8")).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	DisabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	// Data
	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	PositiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	NeutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4"))

	PriceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	// Status
	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	LiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	// Forms and chat
	InputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	UserMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00CED1"))

	AssistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))
)

// ChangeStyle colors by sign.
func ChangeStyle(value float64) lipgloss.Style {
	if value >= 0 {
		return PositiveStyle
	}
	return NegativeStyle
}

// FormatCurrency renders a signed dollar amount, e.g. P&L.
func FormatCurrency(value float64) string {
	if value >= 0 {
		return PositiveStyle.Render("+$" + Commas(value, 2))
	}
	return NegativeStyle.Render("-$" + Commas(-value, 2))
}

func FormatPercentage(value float64) string {
	if value >= 0 {
		return PositiveStyle.Render(fmt.Sprintf("+%.2f%%", value))
	}
	return NegativeStyle.Render(fmt.Sprintf("%.2f%%", value))
}

// PriceText formats a price with precision that suits its magnitude.
func PriceText(value float64) string {
	switch {
	case value == 0:
		return "$0.00"
	case math.Abs(value) < 1:
		return fmt.Sprintf("$%.6f", value)
	case math.Abs(value) < 10:
		return fmt.Sprintf("$%.4f", value)
	}
	return "$" + Commas(value, 2)
}

func FormatPrice(value float64) string {
	return PriceStyle.Render(PriceText(value))
}

// CompactText abbreviates large dollar amounts: $1.2T, $850.3B, $4.1M.
func CompactText(value float64) string {
	switch {
	case value >= 1e12:
		return fmt.Sprintf("$%.2fT", value/1e12)
	case value >= 1e9:
		return fmt.Sprintf("$%.2fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("$%.2fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("$%.1fK", value/1e3)
	}
	return fmt.Sprintf("$%.0f", value)
}

func FormatCompact(value float64) string {
	return ValueStyle.Render(CompactText(value))
}

// Commas formats value with the given decimals and thousands separators.
func Commas(value float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, value)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// Truncate shortens s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
