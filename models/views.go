package models

import (
	"fmt"
	"strings"

	"cryptosage/algo"
	"cryptosage/assistant"
	"cryptosage/chart"
	"cryptosage/heatmap"
	"cryptosage/ui"

	"github.com/charmbracelet/lipgloss"
)

func (m *AppModel) contentWidth() int {
	if m.Width <= 0 {
		return 80
	}
	return max(40, m.Width-4)
}

func (m *AppModel) contentHeight() int {
	if m.Height <= 0 {
		return 24
	}
	return max(10, m.Height-6)
}

func (m *AppModel) tabBar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == m.Tab {
			tabs[i] = ui.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = ui.TabStyle.Render(label)
		}
	}
	return ui.TitleStyle.Render("CryptoSage") + " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *AppModel) footer() string {
	var b strings.Builder
	if m.Error != "" {
		b.WriteString(ui.ErrorStyle.Render("❌ "+m.Error) + "\n")
	} else if m.Status != "" {
		b.WriteString(ui.PositiveStyle.Render("✓ "+m.Status) + "\n")
	}

	var help string
	switch m.Tab {
	case TabHome:
		help = "↑/↓ select • enter chart • x unwatch • r refresh"
	case TabMarket:
		help = "↑/↓ select • enter chart • s sort • h heat map • w watch • r refresh"
	case TabTrade:
		switch m.TradeMode {
		case TradeForm:
			help = "↑/↓ field • ←/→ option • ctrl+p preset • ctrl+u clear • enter create • esc cancel"
		case TradeBots:
			help = "↑/↓ select • x stop • d/g/s new bot • r reload • esc chart"
		default:
			help = "←/→ interval • [/] symbol • d DCA • g grid • s signal • b bots • r reload"
		}
	case TabPortfolio:
		if m.PortfolioMode != PortfolioList {
			help = "tab next field • ctrl+v paste • enter save • esc cancel"
		} else {
			help = "↑/↓ select • ←/→ holdings/wallets • a add holding • w add wallet • x remove • r refresh"
		}
	case TabAI:
		help = "enter send • ctrl+v paste • ctrl+l clear • pgup/pgdn scroll • tab switch tab"
	}
	if !m.capturingText() {
		help += " • 1-5/tab switch • q quit"
	}
	b.WriteString(ui.HelpStyle.Render(help))
	return b.String()
}

// fetchStatus renders the loading, error and empty states of a section. It
// returns "" when the data should be shown.
func fetchStatus(f fetchState, empty bool, what string) string {
	switch {
	case f.Err != nil:
		return ui.ErrorStyle.Render(fmt.Sprintf("⚠ Failed to load %s: %v", what, f.Err)) + "\n" +
			ui.HelpStyle.Render("press r to retry") + "\n"
	case f.Loading && empty:
		return ui.LoadingStyle.Render(fmt.Sprintf("🔄 Loading %s...", what)) + "\n"
	case empty:
		return ui.DisabledStyle.Render(fmt.Sprintf("No %s available.", what)) + "\n"
	}
	return ""
}

func pad(s string, w int) string {
	s = ui.Truncate(s, w)
	if n := lipgloss.Width(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func section(title string) string {
	return ui.TableHeaderStyle.Render(title) + "\n" + strings.Repeat("═", lipgloss.Width(title)) + "\n"
}

func (m *AppModel) homeView() string {
	var watch strings.Builder
	watch.WriteString(section("⭐ WATCHLIST"))
	if s := fetchStatus(m.watchFetch, len(m.WatchCoins) == 0, "watchlist"); s != "" {
		watch.WriteString(s)
	} else {
		for i, c := range m.WatchCoins {
			line := fmt.Sprintf("%s %s %s",
				pad(strings.ToUpper(c.Symbol), 6),
				padLeft(ui.PriceText(c.CurrentPrice), 14),
				padLeft(fmt.Sprintf("%+.2f%%", c.PriceChangePercentage24h), 9))
			if i == m.WatchCursor {
				watch.WriteString(ui.SelectedStyle.Render("▶ "+line) + "\n")
			} else {
				watch.WriteString("  " + ui.ChangeStyle(c.PriceChangePercentage24h).Render(line) + "\n")
			}
		}
	}

	var mood strings.Builder
	mood.WriteString(section("😨 FEAR & GREED"))
	if m.Sentiment == nil {
		mood.WriteString(fetchStatus(m.sentimentFetch, true, "sentiment"))
	} else {
		s := m.Sentiment
		if m.sentimentFetch.Err != nil {
			mood.WriteString(fetchStatus(m.sentimentFetch, false, "sentiment"))
		}
		mood.WriteString(fmt.Sprintf("Now        %s %s\n", ui.RenderGauge(s.Now.Value, 20), ui.SentimentStyle(s.Now.Value).Render(s.Now.Classification)))
		if s.Yesterday != nil {
			mood.WriteString(fmt.Sprintf("Yesterday  %s %s\n", ui.RenderGauge(s.Yesterday.Value, 20), s.Yesterday.Classification))
		}
		if s.LastWeek != nil {
			mood.WriteString(fmt.Sprintf("Last week  %s %s\n", ui.RenderGauge(s.LastWeek.Value, 20), s.LastWeek.Classification))
		}
		mood.WriteString("\n💡 " + s.Insight() + "\n")
	}

	var trending strings.Builder
	trending.WriteString(section("🔥 TRENDING"))
	if s := fetchStatus(m.trendingFetch, len(m.Trending) == 0, "trending coins"); s != "" {
		trending.WriteString(s)
	} else {
		btc := m.btcPrice()
		for i, c := range m.Trending {
			if i == 7 {
				break
			}
			price := "—"
			if usd := c.PriceUSD(btc); usd > 0 {
				price = ui.PriceText(usd)
			}
			trending.WriteString(fmt.Sprintf("%s %s %s\n", pad(strings.ToUpper(c.Symbol), 8), pad(c.Name, 16), padLeft(price, 14)))
		}
	}

	var news strings.Builder
	news.WriteString(section("📰 NEWS"))
	if s := fetchStatus(m.newsFetch, len(m.News) == 0, "news"); s != "" {
		news.WriteString(s)
	} else {
		w := m.contentWidth() - 20
		for _, n := range m.News {
			news.WriteString(fmt.Sprintf("• %s %s\n", ui.Truncate(n.Title, w), ui.HelpStyle.Render(n.Source+" "+n.PublishedAt.Format("Jan 2 15:04"))))
		}
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.BoxStyle.Render(watch.String()),
		ui.BoxStyle.Render(mood.String()),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		ui.BoxStyle.Render(trending.String()),
		ui.BoxStyle.Render(news.String()),
	)
}

func (m *AppModel) marketView() string {
	if m.ShowHeatmap {
		return m.heatmapView()
	}

	var content strings.Builder
	content.WriteString(section(fmt.Sprintf("📊 MARKETS (sorted by %s)", m.Sort)))
	if s := fetchStatus(m.marketsFetch, len(m.Coins) == 0, "markets"); s != "" {
		content.WriteString(s)
		return ui.BoxStyle.Render(content.String())
	}
	if m.marketsFetch.Err != nil {
		content.WriteString(fetchStatus(m.marketsFetch, false, "markets"))
	}

	content.WriteString(ui.TableHeaderStyle.Render(fmt.Sprintf("  %-4s %-6s %-18s %14s %9s %12s %12s", "#", "Sym", "Name", "Price", "24h", "Volume", "Market Cap")) + "\n")
	content.WriteString(strings.Repeat("─", 84) + "\n")

	rows := max(5, m.contentHeight()-6)
	start := 0
	if m.MarketCursor >= rows {
		start = m.MarketCursor - rows + 1
	}
	for i := start; i < len(m.Coins) && i < start+rows; i++ {
		c := m.Coins[i]
		star := " "
		if m.Watchlist.Contains(c.ID) {
			star = "★"
		}
		line := fmt.Sprintf("%s %-4d %s %s %s %s %s %s",
			star,
			c.MarketCapRank,
			pad(strings.ToUpper(c.Symbol), 6),
			pad(c.Name, 18),
			padLeft(ui.PriceText(c.CurrentPrice), 14),
			padLeft(fmt.Sprintf("%+.2f%%", c.PriceChangePercentage24h), 9),
			padLeft(ui.CompactText(c.TotalVolume), 12),
			padLeft(ui.CompactText(c.MarketCap), 12))
		if i == m.MarketCursor {
			content.WriteString(ui.SelectedStyle.Render(line) + "\n")
		} else {
			content.WriteString(ui.ChangeStyle(c.PriceChangePercentage24h).Render(line) + "\n")
		}
	}
	return ui.BoxStyle.Render(content.String())
}

func (m *AppModel) heatmapView() string {
	var content strings.Builder
	content.WriteString(section("🗺  MARKET HEAT MAP (24h change, sized by market cap)"))
	if s := fetchStatus(m.heatmapFetch, len(m.Tiles) == 0, "heat map"); s != "" {
		content.WriteString(s)
		return ui.BoxStyle.Render(content.String())
	}
	if m.heatmapFetch.Err != nil {
		content.WriteString(fetchStatus(m.heatmapFetch, false, "heat map"))
	}

	w, h := m.contentWidth()-4, m.contentHeight()-4
	placements := heatmap.Layout(m.Tiles, heatmap.Rect{W: float64(w), H: float64(h)})
	content.WriteString(ui.RenderTreemap(placements, w, h))
	return ui.BoxStyle.Render(content.String())
}

func (m *AppModel) intervalBar() string {
	var parts []string
	for _, iv := range chart.Intervals() {
		label := iv.Label
		switch {
		case iv.Label == m.Interval.Label && iv.IsLive():
			parts = append(parts, ui.LiveStyle.Render("● "+label))
		case iv.Label == m.Interval.Label:
			parts = append(parts, ui.ActiveTabStyle.Render(label))
		default:
			parts = append(parts, ui.DisabledStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m *AppModel) tradeView() string {
	switch m.TradeMode {
	case TradeForm:
		return m.formView()
	case TradeBots:
		return m.botsView()
	}

	var content strings.Builder
	pts := m.chartPoints()
	header := ui.HeaderStyle.Render(fmt.Sprintf("📈 %s/USDT", m.Symbol))
	if len(pts) > 0 {
		last := pts[len(pts)-1]
		header += "  " + ui.FormatPrice(last.Price) + "  " + ui.FormatPercentage(chart.Change(pts))
	}
	if m.IsStreaming() {
		header += "  " + ui.LiveStyle.Render("● LIVE")
	}
	if c, ok := m.coinBySymbol(m.Symbol); ok && c.MarketCap > 0 {
		header += "  " + ui.HelpStyle.Render("MCap") + " " + ui.FormatCompact(c.MarketCap)
	}
	content.WriteString(header + "\n" + m.intervalBar() + "\n\n")

	w, h := m.contentWidth()-4, m.contentHeight()-6
	if s := fetchStatus(m.chartFetch, len(pts) == 0, "chart"); s != "" {
		content.WriteString(s)
	} else {
		content.WriteString(ui.RenderLineChart(pts, m.Interval, w, h))
	}

	active := 0
	for _, b := range m.Bots {
		if b.Status == algo.StatusActive {
			active++
		}
	}
	content.WriteString(fmt.Sprintf("\n\n🤖 %d active bot(s), exposure %s", active, ui.PriceText(algo.CalculateTotalExposure(m.Bots))))
	return ui.BoxStyle.Render(content.String())
}

func (m *AppModel) formView() string {
	f := m.Form
	var content strings.Builder
	content.WriteString(ui.HeaderStyle.Render("🛠  NEW "+strings.ToUpper(f.Kind.Title())) + "\n\n")

	invalid := map[string]string{}
	for _, p := range m.FormErrors {
		invalid[p.Key] = p.Message
	}

	for i, fd := range f.Fields {
		label := fd.Label
		if fd.Optional {
			label += " (optional)"
		}
		value := fd.Value
		switch {
		case fd.IsToggle() && value == "On":
			value = "[x] On"
		case fd.IsToggle():
			value = "[ ] Off"
		case fd.Kind == algo.FieldChoice:
			value = "◀ " + value + " ▶"
		case i == f.Focus:
			value += "│"
		}

		line := pad(label, 34) + " "
		if i == f.Focus {
			line = ui.SelectedStyle.Render("▶ "+line) + ui.InputStyle.Render(value)
		} else {
			line = "  " + line + ui.UnselectedStyle.Render(value)
		}
		if msg, ok := invalid[fd.Key]; ok {
			line += "  " + ui.ErrorStyle.Render(msg)
		}
		content.WriteString(line + "\n")
	}

	if f.Kind == algo.KindGrid {
		if g := gridPreview(f); g != "" {
			content.WriteString("\n" + ui.HelpStyle.Render(g) + "\n")
		}
	}
	return ui.BoxStyle.Render(content.String())
}

// gridPreview summarises the grid spacing once the range fields parse.
func gridPreview(f *algo.Form) string {
	var g algo.GridSettings
	if _, err := fmt.Sscan(f.Value("lower_price"), &g.LowerPrice); err != nil {
		return ""
	}
	if _, err := fmt.Sscan(f.Value("upper_price"), &g.UpperPrice); err != nil {
		return ""
	}
	if _, err := fmt.Sscan(f.Value("levels"), &g.Levels); err != nil {
		return ""
	}
	prices := g.GridPrices()
	if len(prices) == 0 {
		return ""
	}
	return fmt.Sprintf("%d levels from %s to %s, %.2f%% apart", len(prices), ui.PriceText(prices[0]), ui.PriceText(prices[len(prices)-1]), g.StepPercent())
}

func (m *AppModel) botsView() string {
	var content strings.Builder
	content.WriteString(section("🤖 MY BOTS"))
	if len(m.Bots) == 0 {
		content.WriteString(ui.DisabledStyle.Render("No bots yet. Press d, g or s to create one.") + "\n")
		return ui.BoxStyle.Render(content.String())
	}

	content.WriteString(ui.TableHeaderStyle.Render(fmt.Sprintf("  %-24s %-10s %-12s %-10s %-9s %12s", "Name", "Exchange", "Type", "Pair", "Status", "Exposure")) + "\n")
	content.WriteString(strings.Repeat("─", 84) + "\n")
	for i, b := range m.Bots {
		status := ui.PositiveStyle.Render(pad("Active", 9))
		if b.Status == algo.StatusStopped {
			status = ui.DisabledStyle.Render(pad("Stopped", 9))
		}
		line := fmt.Sprintf("%s %s %s %s %s %s",
			pad(b.Name, 24), pad(b.Exchange, 10), pad(b.Kind.Title(), 12), pad(b.Pair, 10),
			status, padLeft(ui.PriceText(b.Exposure()), 12))
		if i == m.BotCursor {
			content.WriteString(ui.SelectedStyle.Render("▶ ") + line + "\n")
		} else {
			content.WriteString("  " + line + "\n")
		}
	}
	content.WriteString(fmt.Sprintf("\nTotal active exposure: %s\n", ui.PriceText(algo.CalculateTotalExposure(m.Bots))))
	return ui.BoxStyle.Render(content.String())
}

func (m *AppModel) portfolioView() string {
	if m.PortfolioMode != PortfolioList {
		title := "➕ ADD HOLDING"
		if m.PortfolioMode == PortfolioAddWallet {
			title = "➕ ADD WALLET"
		}
		var content strings.Builder
		content.WriteString(ui.HeaderStyle.Render(title) + "\n\n")
		for _, in := range m.inputs {
			content.WriteString(in.View() + "\n")
		}
		return ui.BoxStyle.Render(content.String())
	}

	v := m.valuation()
	var holdings strings.Builder
	holdings.WriteString(section("💰 HOLDINGS"))
	if len(v.Positions) == 0 {
		holdings.WriteString(ui.DisabledStyle.Render("No holdings yet. Press a to add one.") + "\n")
	} else {
		total, _ := v.Total.Float64()
		day, _ := v.DayChange.Float64()
		holdings.WriteString(fmt.Sprintf("Total Value:  %s\n", ui.FormatPrice(total)))
		holdings.WriteString(fmt.Sprintf("Day Change:   %s (%s)\n\n", ui.FormatCurrency(day), ui.FormatPercentage(v.DayChangePct)))
		if m.quotesFetch.Err != nil {
			holdings.WriteString(fetchStatus(m.quotesFetch, false, "prices"))
		}
		holdings.WriteString(ui.TableHeaderStyle.Render(fmt.Sprintf("  %-6s %14s %14s %14s %8s", "Asset", "Amount", "Price", "Value", "Alloc")) + "\n")
		for i, p := range v.Positions {
			price, value := "—", "—"
			if p.Priced {
				pf, _ := p.Price.Float64()
				vf, _ := p.Value.Float64()
				price, value = ui.PriceText(pf), ui.PriceText(vf)
			}
			line := fmt.Sprintf("%s %s %s %s %s %s",
				pad(p.Holding.Symbol, 6),
				padLeft(p.Holding.Amount.String(), 14),
				padLeft(price, 14),
				padLeft(value, 14),
				padLeft(fmt.Sprintf("%.1f%%", p.Fraction*100), 7),
				allocationBar(p.Fraction, 12))
			if !m.WalletFocus && i == m.HoldingCursor {
				holdings.WriteString(ui.SelectedStyle.Render("▶ "+line) + "\n")
			} else {
				holdings.WriteString("  " + line + "\n")
			}
		}
	}

	var wallets strings.Builder
	wallets.WriteString(section("👛 WALLETS"))
	if len(m.Wallets) == 0 {
		wallets.WriteString(ui.DisabledStyle.Render("No wallets yet. Press w to add one.") + "\n")
	}
	for i, w := range m.Wallets {
		line := fmt.Sprintf("%s %s", pad(w.Label, 16), ui.HelpStyle.Render(w.Address))
		if m.WalletFocus && i == m.WalletCursor {
			wallets.WriteString(ui.SelectedStyle.Render("▶ ") + line + "\n")
		} else {
			wallets.WriteString("  " + line + "\n")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		ui.BoxStyle.Render(holdings.String()),
		ui.BoxStyle.Render(wallets.String()),
	)
}

func allocationBar(frac float64, width int) string {
	n := int(frac*float64(width) + 0.5)
	n = max(0, min(width, n))
	return ui.PositiveStyle.Render(strings.Repeat("█", n)) + ui.DisabledStyle.Render(strings.Repeat("░", width-n))
}

func (m *AppModel) resizeChat() {
	m.chatView.Width = m.contentWidth() - 4
	m.chatView.Height = max(5, m.contentHeight()-6)
	m.chatInput.Width = m.contentWidth() - 8
	m.refreshChat()
}

// refreshChat re-renders the transcript into the viewport and scrolls to
// the newest message.
func (m *AppModel) refreshChat() {
	width := max(20, m.chatView.Width-2)
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for _, msg := range m.Chat {
		who, style := "🤖 Assistant", ui.AssistantMessageStyle
		switch msg.Role {
		case assistant.RoleUser:
			who, style = "🧑 You", ui.UserMessageStyle
		case assistant.RoleSystem:
			who, style = "ℹ System", ui.HelpStyle
		}
		b.WriteString(ui.HelpStyle.Render(who+" · "+msg.Time.Format("15:04")) + "\n")
		b.WriteString(style.Render(wrap.Render(msg.Content)) + "\n\n")
	}
	m.chatView.SetContent(b.String())
	m.chatView.GotoBottom()
}

func (m *AppModel) aiView() string {
	var content strings.Builder
	content.WriteString(ui.HeaderStyle.Render("🤖 AI TRADING ASSISTANT") + "\n\n")
	content.WriteString(m.chatView.View() + "\n")
	if m.Thinking {
		content.WriteString(m.spinner.View() + " thinking...\n")
	} else {
		content.WriteString("\n")
	}
	content.WriteString(m.chatInput.View())
	return ui.BoxStyle.Render(content.String())
}
