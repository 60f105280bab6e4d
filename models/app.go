package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptosage/algo"
	"cryptosage/api"
	"cryptosage/assistant"
	"cryptosage/chart"
	"cryptosage/config"
	"cryptosage/heatmap"
	"cryptosage/logging"
	"cryptosage/portfolio"
	"cryptosage/storage"
	"cryptosage/ui"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Tabs
const (
	TabHome = iota
	TabMarket
	TabTrade
	TabPortfolio
	TabAI
)

var tabNames = []string{"🏠 Home", "📊 Market", "📈 Trade", "💼 Portfolio", "🤖 AI"}

// Trade tab modes
const (
	TradeChart = iota
	TradeForm
	TradeBots
)

// Portfolio tab modes
const (
	PortfolioList = iota
	PortfolioAddHolding
	PortfolioAddWallet
)

// Symbols the Trade tab cycles through with [ and ].
var TradeSymbols = []string{"BTC", "ETH", "SOL", "ADA", "XRP", "DOGE"}

// Deps are the collaborators the model talks to.
type Deps struct {
	Config    *config.Config
	Store     storage.Store
	Klines    KlineSource
	Markets   MarketSource
	Sentiment SentimentSource
	News      NewsSource
	NewStream func(symbol string) TickStream
	Bots      *algo.Manager
	Assistant *assistant.Assistant
	Logger    *zap.Logger
	Now       func() time.Time
}

// fetchState tracks one remote resource. Each request bumps gen, and only
// the result of the latest request is applied.
type fetchState struct {
	gen     int
	Loading bool
	Loaded  bool
	Err     error
}

func (f *fetchState) begin() {
	f.gen++
	f.Loading = true
	f.Err = nil
}

// accept records the outcome of the request made under gen. It returns
// false for results of superseded requests.
func (f *fetchState) accept(gen int, err error) bool {
	if gen != f.gen {
		return false
	}
	f.Loading = false
	f.Err = err
	if err == nil {
		f.Loaded = true
	}
	return true
}

// cancel makes any in-flight request stale.
func (f *fetchState) cancel() {
	f.gen++
	f.Loading = false
}

type AppModel struct {
	Tab    int
	Width  int
	Height int
	Status string
	Error  string

	// Home
	Watchlist   storage.Watchlist
	WatchCoins  []api.Coin
	WatchCursor int
	Sentiment   *api.Sentiment
	Trending    []api.TrendingCoin
	News        []api.NewsItem

	// Market
	Coins        []api.Coin
	Sort         api.SortKey
	MarketCursor int
	ShowHeatmap  bool
	Tiles        []heatmap.Tile

	// Trade
	Symbol     string
	Interval   chart.Interval
	Points     []chart.Point
	TradeMode  int
	Form       *algo.Form
	FormErrors []algo.FieldError
	Preset     int
	Bots       []algo.BotConfig
	BotCursor  int

	// Portfolio
	Holdings      []portfolio.Holding
	Quotes        map[string]portfolio.Quote
	Wallets       []storage.Wallet
	PortfolioMode int
	WalletFocus   bool
	HoldingCursor int
	WalletCursor  int
	inputs        []textinput.Model
	inputFocus    int

	// AI
	Chat      []assistant.Message
	Thinking  bool
	chatInput textinput.Model
	chatView  viewport.Model
	spinner   spinner.Model

	watchFetch     fetchState
	sentimentFetch fetchState
	trendingFetch  fetchState
	newsFetch      fetchState
	marketsFetch   fetchState
	heatmapFetch   fetchState
	chartFetch     fetchState
	quotesFetch    fetchState

	agg          *chart.Aggregator
	stream       TickStream
	liveGen      int
	heatmapTimer int

	deps   Deps
	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	now    func() time.Time
}

func NewAppModel(deps Deps) *AppModel {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	logger := logging.OrNop(deps.Logger)
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	iv, err := chart.ParseInterval(cfg.Chart.Interval)
	if err != nil {
		iv = chart.OneDay
	}
	symbol := strings.ToUpper(strings.TrimSpace(cfg.Chart.Symbol))
	if symbol == "" {
		symbol = "BTC"
	}

	input := textinput.New()
	input.Placeholder = "Ask about bots, prices or sentiment..."
	input.CharLimit = 500
	input.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.LoadingStyle

	ctx, cancel := context.WithCancel(context.Background())
	return &AppModel{
		Tab:       TabHome,
		Symbol:    symbol,
		Interval:  iv,
		Watchlist: storage.Watchlist{IDs: append([]string(nil), storage.DefaultWatchlist...)},
		Quotes:    map[string]portfolio.Quote{},
		chatInput: input,
		chatView:  viewport.New(80, 12),
		spinner:   sp,
		agg:       chart.NewAggregator(cfg.Chart.LiveWindow),
		deps:      deps,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		now:       now,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (m *AppModel) marketTick() tea.Cmd {
	return tickEvery(orDefault(m.cfg.Refresh.Market, time.Minute), func(t time.Time) tea.Msg { return marketTickMsg(t) })
}

func (m *AppModel) sentimentTick() tea.Cmd {
	return tickEvery(orDefault(m.cfg.Refresh.Sentiment, 2*time.Minute), func(t time.Time) tea.Msg { return sentimentTickMsg(t) })
}

func (m *AppModel) heatmapTick() tea.Cmd {
	gen := m.heatmapTimer
	return tickEvery(orDefault(m.cfg.Refresh.Heatmap, time.Minute), func(time.Time) tea.Msg { return heatmapTickMsg{gen: gen} })
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadWatchlistCmd(),
		m.loadSentimentCmd(),
		m.loadTrendingCmd(),
		m.loadNewsCmd(),
		m.loadMarketsCmd(),
		m.loadHoldingsCmd(),
		m.loadWalletsCmd(),
		m.loadBotsCmd(),
		m.loadChatCmd(),
		m.marketTick(),
		m.sentimentTick(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resizeChat()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.Thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case marketTickMsg:
		return m, tea.Batch(
			m.loadWatchCoinsCmd(m.Watchlist.IDs),
			m.loadMarketsCmd(),
			m.loadTrendingCmd(),
			m.loadQuotesCmd(),
			m.marketTick(),
		)

	case sentimentTickMsg:
		return m, tea.Batch(m.loadSentimentCmd(), m.sentimentTick())

	case heatmapTickMsg:
		if msg.gen != m.heatmapTimer || !m.ShowHeatmap {
			return m, nil
		}
		return m, tea.Batch(m.loadHeatmapCmd(), m.heatmapTick())

	case watchlistLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to load watchlist", zap.Error(msg.err))
		} else {
			m.Watchlist = msg.list
		}
		return m, m.loadWatchCoinsCmd(m.Watchlist.IDs)

	case watchCoinsLoadedMsg:
		if m.watchFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.WatchCoins = msg.coins
			m.WatchCursor = clamp(m.WatchCursor, len(m.WatchCoins))
		}
		m.logFetch("watchlist", msg.err)
		return m, nil

	case sentimentLoadedMsg:
		if m.sentimentFetch.accept(msg.gen, msg.err) && msg.err == nil {
			s := msg.sentiment
			m.Sentiment = &s
		}
		m.logFetch("sentiment", msg.err)
		return m, nil

	case trendingLoadedMsg:
		if m.trendingFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.Trending = msg.coins
		}
		m.logFetch("trending", msg.err)
		return m, nil

	case newsLoadedMsg:
		if m.newsFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.News = msg.items
		}
		m.logFetch("news", msg.err)
		return m, nil

	case marketsLoadedMsg:
		if m.marketsFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.Coins = msg.coins
			api.SortCoins(m.Coins, m.Sort)
			m.MarketCursor = clamp(m.MarketCursor, len(m.Coins))
		}
		m.logFetch("markets", msg.err)
		return m, nil

	case heatmapLoadedMsg:
		if m.heatmapFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.Tiles = heatmap.Collapse(msg.tiles, m.heatmapTop())
		}
		m.logFetch("heat map", msg.err)
		return m, nil

	case klinesLoadedMsg:
		return m.handleKlines(msg)

	case streamStartedMsg:
		return m.handleStreamStarted(msg)

	case tradeTickMsg:
		return m.handleTradeTick(msg)

	case flushMsg:
		if msg.gen == m.liveGen {
			m.agg.Flush(m.now())
		}
		return m, nil

	case botsLoadedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to load bots: %v", msg.err)
			return m, nil
		}
		m.Bots = msg.bots
		m.BotCursor = clamp(m.BotCursor, len(m.Bots))
		return m, nil

	case botSavedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to save bot: %v", msg.err)
			return m, nil
		}
		m.Error = ""
		if msg.bot.Status == algo.StatusStopped {
			m.Status = fmt.Sprintf("Stopped %s", msg.bot.Name)
		} else {
			m.Status = fmt.Sprintf("Created %s (%s)", msg.bot.Name, msg.bot.Kind.Title())
			m.TradeMode = TradeBots
			m.Form = nil
		}
		return m, m.loadBotsCmd()

	case holdingsLoadedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to load holdings: %v", msg.err)
			return m, nil
		}
		m.Holdings = msg.holdings
		return m, m.loadQuotesCmd()

	case quotesLoadedMsg:
		if m.quotesFetch.accept(msg.gen, msg.err) && msg.err == nil {
			m.Quotes = msg.quotes
		}
		m.logFetch("quotes", msg.err)
		return m, nil

	case walletsLoadedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to load wallets: %v", msg.err)
			return m, nil
		}
		m.Wallets = msg.wallets
		return m, nil

	case chatLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to load chat history", zap.Error(msg.err))
		}
		m.Chat = msg.transcript
		m.refreshChat()
		return m, nil

	case chatRepliedMsg:
		m.Thinking = false
		if msg.transcript != nil {
			m.Chat = msg.transcript
			m.refreshChat()
		}
		if msg.err != nil {
			m.Error = fmt.Sprintf("Chat: %v", msg.err)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.Error = fmt.Sprintf("Failed to save %s: %v", msg.what, msg.err)
		}
		return m, nil
	}

	return m, nil
}

func (m *AppModel) View() string {
	var body string
	switch m.Tab {
	case TabHome:
		body = m.homeView()
	case TabMarket:
		body = m.marketView()
	case TabTrade:
		body = m.tradeView()
	case TabPortfolio:
		body = m.portfolioView()
	case TabAI:
		body = m.aiView()
	}
	return m.tabBar() + "\n" + body + "\n" + m.footer()
}

func (m *AppModel) logFetch(what string, err error) {
	if err != nil {
		m.logger.Warn("fetch failed", zap.String("resource", what), zap.Error(err))
	}
}

func (m *AppModel) heatmapTop() int {
	if m.cfg.Chart.HeatmapTop > 0 {
		return m.cfg.Chart.HeatmapTop
	}
	return heatmap.DefaultTop
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// setTab switches tabs, starting and stopping what the tabs own.
func (m *AppModel) setTab(tab int) tea.Cmd {
	if tab == m.Tab || tab < 0 || tab >= len(tabNames) {
		return nil
	}
	prev := m.Tab
	m.Tab = tab
	m.Status = ""

	var cmds []tea.Cmd
	switch prev {
	case TabTrade:
		if m.stream != nil {
			m.stopLive()
			m.chartFetch.cancel()
		}
	case TabAI:
		m.chatInput.Blur()
	}

	switch tab {
	case TabTrade:
		if m.Interval.IsLive() && m.stream == nil {
			cmds = append(cmds, m.reloadChart())
		} else if !m.chartFetch.Loaded && !m.chartFetch.Loading {
			cmds = append(cmds, m.loadKlinesCmd())
		}
	case TabAI:
		cmds = append(cmds, m.chatInput.Focus())
	}
	return tea.Batch(cmds...)
}

// shutdown stops the stream and cancels in-flight requests.
func (m *AppModel) shutdown() {
	m.stopLive()
	m.cancel()
}

func (m *AppModel) coinBySymbol(symbol string) (api.Coin, bool) {
	for _, list := range [][]api.Coin{m.WatchCoins, m.Coins} {
		for _, c := range list {
			if strings.EqualFold(c.Symbol, symbol) {
				return c, true
			}
		}
	}
	return api.Coin{}, false
}

func (m *AppModel) btcPrice() float64 {
	if c, ok := m.coinBySymbol("BTC"); ok {
		return c.CurrentPrice
	}
	return 0
}

func (m *AppModel) marketContext() assistant.MarketContext {
	mc := assistant.MarketContext{Symbol: m.Symbol, Sentiment: m.Sentiment}
	if pts := m.chartPoints(); len(pts) > 0 {
		mc.LastPrice = pts[len(pts)-1].Price
		mc.HasPrice = true
		mc.ChangePct = chart.Change(pts)
		mc.Interval = m.Interval.Label
	} else if c, ok := m.coinBySymbol(m.Symbol); ok && c.CurrentPrice > 0 {
		mc.LastPrice = c.CurrentPrice
		mc.HasPrice = true
		mc.ChangePct = c.PriceChangePercentage24h
		mc.Interval = "24h"
	}
	for _, b := range m.Bots {
		if b.Status == algo.StatusActive {
			mc.ActiveBots++
		}
	}
	return mc
}
