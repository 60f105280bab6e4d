package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cryptosage/algo"
	"cryptosage/api"
	"cryptosage/portfolio"
	"cryptosage/storage"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// capturingText reports whether printable keys belong to a text field.
func (m *AppModel) capturingText() bool {
	switch m.Tab {
	case TabTrade:
		return m.TradeMode == TradeForm
	case TabPortfolio:
		return m.PortfolioMode != PortfolioList
	case TabAI:
		return true
	}
	return false
}

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit
	case "tab":
		if !m.capturingText() || m.Tab == TabAI {
			return m, m.setTab((m.Tab + 1) % len(tabNames))
		}
	case "shift+tab":
		if !m.capturingText() || m.Tab == TabAI {
			return m, m.setTab((m.Tab - 1 + len(tabNames)) % len(tabNames))
		}
	}

	if !m.capturingText() {
		switch key {
		case "q":
			m.shutdown()
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			return m, m.setTab(int(key[0] - '1'))
		}
	}

	switch m.Tab {
	case TabHome:
		return m.handleHomeKeys(key)
	case TabMarket:
		return m.handleMarketKeys(key)
	case TabTrade:
		switch m.TradeMode {
		case TradeForm:
			return m.handleFormKeys(msg)
		case TradeBots:
			return m.handleBotsKeys(key)
		}
		return m.handleChartKeys(key)
	case TabPortfolio:
		if m.PortfolioMode != PortfolioList {
			return m.handleInputKeys(msg)
		}
		return m.handlePortfolioKeys(key)
	case TabAI:
		return m.handleChatKeys(msg)
	}
	return m, nil
}

func (m *AppModel) handleHomeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.WatchCursor > 0 {
			m.WatchCursor--
		}
	case "down", "j":
		if m.WatchCursor < len(m.WatchCoins)-1 {
			m.WatchCursor++
		}
	case "enter":
		if m.WatchCursor < len(m.WatchCoins) {
			return m, m.openChart(m.WatchCoins[m.WatchCursor].Symbol)
		}
	case "x":
		if m.WatchCursor < len(m.WatchCoins) {
			return m, m.toggleWatch(m.WatchCoins[m.WatchCursor].ID)
		}
	case "r":
		return m, tea.Batch(
			m.loadWatchCoinsCmd(m.Watchlist.IDs),
			m.loadSentimentCmd(),
			m.loadTrendingCmd(),
			m.loadNewsCmd(),
		)
	}
	return m, nil
}

// openChart shows symbol on the Trade tab.
func (m *AppModel) openChart(symbol string) tea.Cmd {
	symbol = strings.ToUpper(symbol)
	if m.Tab == TabTrade && symbol == m.Symbol {
		return nil
	}
	m.Symbol = symbol
	m.TradeMode = TradeChart
	m.stopLive()
	m.chartFetch = fetchState{gen: m.chartFetch.gen + 1}
	m.Points = nil
	if m.Tab == TabTrade {
		return m.reloadChart()
	}
	return m.setTab(TabTrade)
}

// toggleWatch adds or removes a coin id and persists the list.
func (m *AppModel) toggleWatch(id string) tea.Cmd {
	if m.Watchlist.Contains(id) {
		m.Watchlist.Remove(id)
		m.Status = fmt.Sprintf("Removed %s from watchlist", id)
	} else {
		m.Watchlist.Add(id)
		m.Status = fmt.Sprintf("Added %s to watchlist", id)
	}
	list := storage.Watchlist{IDs: append([]string(nil), m.Watchlist.IDs...)}
	return tea.Batch(
		m.saveCmd("watchlist", func(ctx context.Context) error {
			return storage.SaveWatchlist(ctx, m.deps.Store, list)
		}),
		m.loadWatchCoinsCmd(list.IDs),
	)
}

func (m *AppModel) handleMarketKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.MarketCursor > 0 {
			m.MarketCursor--
		}
	case "down", "j":
		if m.MarketCursor < len(m.Coins)-1 {
			m.MarketCursor++
		}
	case "s":
		m.Sort = m.Sort.Next()
		api.SortCoins(m.Coins, m.Sort)
		m.MarketCursor = 0
	case "h":
		m.ShowHeatmap = !m.ShowHeatmap
		m.heatmapTimer++
		if m.ShowHeatmap {
			return m, tea.Batch(m.loadHeatmapCmd(), m.heatmapTick())
		}
		m.heatmapFetch.cancel()
	case "w":
		if m.MarketCursor < len(m.Coins) {
			return m, m.toggleWatch(m.Coins[m.MarketCursor].ID)
		}
	case "enter":
		if m.MarketCursor < len(m.Coins) {
			return m, m.openChart(m.Coins[m.MarketCursor].Symbol)
		}
	case "r":
		if m.ShowHeatmap {
			return m, m.loadHeatmapCmd()
		}
		return m, m.loadMarketsCmd()
	}
	return m, nil
}

func (m *AppModel) handleChartKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "right", "l":
		m.Interval = m.Interval.Next()
		return m, m.reloadChart()
	case "left", "h":
		m.Interval = m.Interval.Prev()
		return m, m.reloadChart()
	case "]", "[":
		idx := 0
		for i, s := range TradeSymbols {
			if s == m.Symbol {
				idx = i
			}
		}
		if key == "]" {
			idx = (idx + 1) % len(TradeSymbols)
		} else {
			idx = (idx - 1 + len(TradeSymbols)) % len(TradeSymbols)
		}
		m.Symbol = TradeSymbols[idx]
		return m, m.reloadChart()
	case "r":
		return m, m.reloadChart()
	case "d":
		m.openForm(algo.KindDCA)
	case "g":
		m.openForm(algo.KindGrid)
	case "s":
		m.openForm(algo.KindSignal)
	case "b":
		m.TradeMode = TradeBots
		return m, m.loadBotsCmd()
	}
	return m, nil
}

func (m *AppModel) openForm(kind algo.BotKind) {
	m.Form = algo.NewForm(kind)
	m.FormErrors = nil
	m.Preset = -1
	m.TradeMode = TradeForm
	m.Error = ""
	if pair := m.Symbol + "_USDT"; m.Form.Field("pair") != nil {
		_ = m.Form.Set("pair", pair)
	}
}

func (m *AppModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.Form
	switch msg.String() {
	case "esc":
		m.Form = nil
		m.FormErrors = nil
		m.TradeMode = TradeChart
	case "down", "tab":
		f.Next()
	case "up", "shift+tab":
		f.Prev()
	case "left":
		f.Cycle(-1)
	case "right", " ":
		if fd := f.Focused(); fd != nil && fd.Kind == algo.FieldChoice {
			f.Cycle(1)
		} else if msg.String() == " " {
			f.Input(" ")
		}
	case "backspace":
		f.Backspace()
	case "ctrl+u":
		f.Clear()
	case "ctrl+p":
		names := algo.PresetNames()
		m.Preset = (m.Preset + 1) % len(names)
		if err := algo.ApplyPreset(f, names[m.Preset]); err != nil {
			m.Error = err.Error()
		} else {
			m.Status = fmt.Sprintf("Applied %s preset", names[m.Preset])
		}
	case "ctrl+v":
		if text, err := readClipboard(); err == nil {
			f.Input(text)
		}
	case "enter":
		cfg, err := algo.ParseForm(f, m.now())
		var verr *algo.ValidationError
		if errors.As(err, &verr) {
			m.FormErrors = verr.Problems
			return m, nil
		}
		if err != nil {
			m.Error = err.Error()
			return m, nil
		}
		m.FormErrors = nil
		return m, m.createBotCmd(cfg)
	default:
		if msg.Type == tea.KeyRunes {
			f.Input(string(msg.Runes))
		}
	}
	return m, nil
}

func (m *AppModel) handleBotsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.TradeMode = TradeChart
	case "up", "k":
		if m.BotCursor > 0 {
			m.BotCursor--
		}
	case "down", "j":
		if m.BotCursor < len(m.Bots)-1 {
			m.BotCursor++
		}
	case "x":
		if m.BotCursor < len(m.Bots) && m.Bots[m.BotCursor].Status == algo.StatusActive {
			return m, m.stopBotCmd(m.Bots[m.BotCursor].ID)
		}
	case "r":
		return m, m.loadBotsCmd()
	case "d":
		m.openForm(algo.KindDCA)
	case "g":
		m.openForm(algo.KindGrid)
	case "s":
		m.openForm(algo.KindSignal)
	}
	return m, nil
}

func (m *AppModel) handlePortfolioKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "right":
		m.WalletFocus = !m.WalletFocus
	case "up", "k":
		if m.WalletFocus && m.WalletCursor > 0 {
			m.WalletCursor--
		} else if !m.WalletFocus && m.HoldingCursor > 0 {
			m.HoldingCursor--
		}
	case "down", "j":
		if m.WalletFocus && m.WalletCursor < len(m.Wallets)-1 {
			m.WalletCursor++
		} else if !m.WalletFocus && m.HoldingCursor < len(m.valuation().Positions)-1 {
			m.HoldingCursor++
		}
	case "a":
		return m, m.openInputs(PortfolioAddHolding, "Symbol", "Amount", "Cost basis (USD, optional)", "CoinGecko id (optional)")
	case "w":
		return m, m.openInputs(PortfolioAddWallet, "Address", "Label (optional)")
	case "x":
		if m.WalletFocus {
			return m, m.removeWallet()
		}
		return m, m.removeHolding()
	case "r":
		return m, m.loadQuotesCmd()
	}
	return m, nil
}

func (m *AppModel) openInputs(mode int, labels ...string) tea.Cmd {
	m.PortfolioMode = mode
	m.Error = ""
	m.inputs = make([]textinput.Model, len(labels))
	for i, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l
		ti.Prompt = fmt.Sprintf("%-28s", l+":")
		ti.CharLimit = 128
		m.inputs[i] = ti
	}
	m.inputFocus = 0
	return m.inputs[0].Focus()
}

func (m *AppModel) focusInput(i int) tea.Cmd {
	m.inputs[m.inputFocus].Blur()
	m.inputFocus = (i + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.inputFocus].Focus()
}

func (m *AppModel) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.PortfolioMode = PortfolioList
		m.inputs = nil
		return m, nil
	case "tab", "down":
		return m, m.focusInput(m.inputFocus + 1)
	case "shift+tab", "up":
		return m, m.focusInput(m.inputFocus - 1)
	case "ctrl+v":
		if text, err := readClipboard(); err == nil {
			in := &m.inputs[m.inputFocus]
			in.SetValue(in.Value() + text)
			in.CursorEnd()
		}
		return m, nil
	case "enter":
		return m, m.submitInputs()
	}

	var cmd tea.Cmd
	m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
	return m, cmd
}

func (m *AppModel) submitInputs() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}

	switch m.PortfolioMode {
	case PortfolioAddHolding:
		h, err := portfolio.NewHolding(values[0], values[3], values[1], values[2], m.now())
		if err != nil {
			m.Error = err.Error()
			return nil
		}
		m.Holdings = append(m.Holdings, h)
		m.Status = fmt.Sprintf("Added %s %s", h.Amount.String(), h.Symbol)
		m.PortfolioMode = PortfolioList
		return tea.Batch(m.saveHoldings(), m.loadQuotesCmd())

	case PortfolioAddWallet:
		w, err := storage.NewWallet(values[1], values[0], m.now())
		if err != nil {
			m.Error = err.Error()
			return nil
		}
		m.Wallets = append(m.Wallets, w)
		m.Status = fmt.Sprintf("Added wallet %s", w.Label)
		m.PortfolioMode = PortfolioList
		return m.saveWallets()
	}
	return nil
}

func (m *AppModel) saveHoldings() tea.Cmd {
	snapshot := append([]portfolio.Holding(nil), m.Holdings...)
	return m.saveCmd("holdings", func(ctx context.Context) error {
		return portfolio.Save(ctx, m.deps.Store, snapshot)
	})
}

func (m *AppModel) saveWallets() tea.Cmd {
	snapshot := append([]storage.Wallet(nil), m.Wallets...)
	return m.saveCmd("wallets", func(ctx context.Context) error {
		return storage.SaveWallets(ctx, m.deps.Store, snapshot)
	})
}

func (m *AppModel) removeHolding() tea.Cmd {
	positions := m.valuation().Positions
	if m.HoldingCursor >= len(positions) {
		return nil
	}
	h := positions[m.HoldingCursor].Holding
	m.Holdings = portfolio.Remove(m.Holdings, h.ID)
	m.HoldingCursor = clamp(m.HoldingCursor, len(m.Holdings))
	m.Status = fmt.Sprintf("Removed %s", h.Symbol)
	return m.saveHoldings()
}

func (m *AppModel) removeWallet() tea.Cmd {
	if m.WalletCursor >= len(m.Wallets) {
		return nil
	}
	w := m.Wallets[m.WalletCursor]
	m.Wallets = append(m.Wallets[:m.WalletCursor:m.WalletCursor], m.Wallets[m.WalletCursor+1:]...)
	m.WalletCursor = clamp(m.WalletCursor, len(m.Wallets))
	m.Status = fmt.Sprintf("Removed wallet %s", w.Label)
	return m.saveWallets()
}

func (m *AppModel) valuation() portfolio.Valuation {
	return portfolio.Value(m.Holdings, m.Quotes)
}

func (m *AppModel) handleChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.chatInput.Value())
		if input == "" || m.Thinking {
			return m, nil
		}
		m.chatInput.Reset()
		m.Thinking = true
		return m, tea.Batch(m.replyCmd(input), m.spinner.Tick)
	case "ctrl+l":
		return m, m.clearChatCmd()
	case "ctrl+v":
		if text, err := readClipboard(); err == nil {
			m.chatInput.SetValue(m.chatInput.Value() + text)
			m.chatInput.CursorEnd()
		}
		return m, nil
	case "pgup", "pgdown", "ctrl+up", "ctrl+down":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// readClipboard returns the clipboard as a single trimmed line.
func readClipboard() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	text = strings.ReplaceAll(text, "\n", "")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.TrimSpace(text), nil
}
