package models

import (
	"context"
	"errors"
	"time"

	"cryptosage/algo"
	"cryptosage/api"
	"cryptosage/assistant"
	"cryptosage/chart"
	"cryptosage/heatmap"
	"cryptosage/portfolio"
	"cryptosage/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// Data sources. The api package clients satisfy these.
type (
	KlineSource interface {
		GetKlines(ctx context.Context, symbol string, iv chart.Interval) ([]chart.Point, error)
	}
	MarketSource interface {
		GetMarkets(ctx context.Context, q api.MarketsQuery) ([]api.Coin, error)
		GetHeatmapTiles(ctx context.Context, perPage int) ([]heatmap.Tile, error)
		GetTrending(ctx context.Context) ([]api.TrendingCoin, error)
	}
	SentimentSource interface {
		GetFearGreed(ctx context.Context) (api.Sentiment, error)
	}
	NewsSource interface {
		GetLatest(ctx context.Context, n int) ([]api.NewsItem, error)
	}
	TickStream interface {
		Start(ctx context.Context) error
		Next(ctx context.Context) (chart.Tick, error)
		Stop()
	}
)

const (
	marketListSize  = 50
	heatmapPageSize = 50
)

// Messages. Every fetch result carries the generation it was requested
// under; results from an older generation are dropped.
type (
	watchlistLoadedMsg struct {
		list storage.Watchlist
		err  error
	}
	watchCoinsLoadedMsg struct {
		gen   int
		coins []api.Coin
		err   error
	}
	sentimentLoadedMsg struct {
		gen       int
		sentiment api.Sentiment
		err       error
	}
	trendingLoadedMsg struct {
		gen   int
		coins []api.TrendingCoin
		err   error
	}
	newsLoadedMsg struct {
		gen   int
		items []api.NewsItem
		err   error
	}
	marketsLoadedMsg struct {
		gen   int
		coins []api.Coin
		err   error
	}
	heatmapLoadedMsg struct {
		gen   int
		tiles []heatmap.Tile
		err   error
	}
	klinesLoadedMsg struct {
		gen    int
		points []chart.Point
		err    error
	}
	streamStartedMsg struct {
		gen int
		err error
	}
	tradeTickMsg struct {
		gen  int
		tick chart.Tick
		err  error
	}
	flushMsg struct{ gen int }
	botsLoadedMsg struct {
		bots []algo.BotConfig
		err  error
	}
	botSavedMsg struct {
		bot algo.BotConfig
		err error
	}
	holdingsLoadedMsg struct {
		holdings []portfolio.Holding
		err      error
	}
	quotesLoadedMsg struct {
		gen    int
		quotes map[string]portfolio.Quote
		err    error
	}
	walletsLoadedMsg struct {
		wallets []storage.Wallet
		err     error
	}
	chatLoadedMsg struct {
		transcript []assistant.Message
		err        error
	}
	chatRepliedMsg struct {
		transcript []assistant.Message
		err        error
	}
	savedMsg struct {
		what string
		err  error
	}
)

// Timers.
type (
	marketTickMsg    time.Time
	sentimentTickMsg time.Time
	heatmapTickMsg   struct{ gen int }
)

func tickEvery(d time.Duration, msg func(time.Time) tea.Msg) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return msg(t) })
}

func (m *AppModel) loadWatchlistCmd() tea.Cmd {
	return func() tea.Msg {
		list, err := storage.LoadWatchlist(m.ctx, m.deps.Store)
		return watchlistLoadedMsg{list: list, err: err}
	}
}

// loadWatchCoinsCmd copies ids; the command runs off the update loop while
// the watchlist may still be edited in place.
func (m *AppModel) loadWatchCoinsCmd(ids []string) tea.Cmd {
	m.watchFetch.begin()
	gen := m.watchFetch.gen
	ids = append([]string(nil), ids...)
	return func() tea.Msg {
		if len(ids) == 0 {
			return watchCoinsLoadedMsg{gen: gen}
		}
		coins, err := m.deps.Markets.GetMarkets(m.ctx, api.MarketsQuery{IDs: ids, PerPage: len(ids)})
		return watchCoinsLoadedMsg{gen: gen, coins: coins, err: err}
	}
}

func (m *AppModel) loadSentimentCmd() tea.Cmd {
	m.sentimentFetch.begin()
	gen := m.sentimentFetch.gen
	return func() tea.Msg {
		s, err := m.deps.Sentiment.GetFearGreed(m.ctx)
		return sentimentLoadedMsg{gen: gen, sentiment: s, err: err}
	}
}

func (m *AppModel) loadTrendingCmd() tea.Cmd {
	m.trendingFetch.begin()
	gen := m.trendingFetch.gen
	return func() tea.Msg {
		coins, err := m.deps.Markets.GetTrending(m.ctx)
		return trendingLoadedMsg{gen: gen, coins: coins, err: err}
	}
}

func (m *AppModel) loadNewsCmd() tea.Cmd {
	m.newsFetch.begin()
	gen := m.newsFetch.gen
	return func() tea.Msg {
		items, err := m.deps.News.GetLatest(m.ctx, api.DefaultNewsCount)
		return newsLoadedMsg{gen: gen, items: items, err: err}
	}
}

func (m *AppModel) loadMarketsCmd() tea.Cmd {
	m.marketsFetch.begin()
	gen := m.marketsFetch.gen
	return func() tea.Msg {
		coins, err := m.deps.Markets.GetMarkets(m.ctx, api.MarketsQuery{PerPage: marketListSize})
		return marketsLoadedMsg{gen: gen, coins: coins, err: err}
	}
}

func (m *AppModel) loadHeatmapCmd() tea.Cmd {
	m.heatmapFetch.begin()
	gen := m.heatmapFetch.gen
	return func() tea.Msg {
		tiles, err := m.deps.Markets.GetHeatmapTiles(m.ctx, heatmapPageSize)
		return heatmapLoadedMsg{gen: gen, tiles: tiles, err: err}
	}
}

func (m *AppModel) loadKlinesCmd() tea.Cmd {
	m.chartFetch.begin()
	gen := m.chartFetch.gen
	symbol, iv := m.Symbol, m.Interval
	return func() tea.Msg {
		pts, err := m.deps.Klines.GetKlines(m.ctx, symbol, iv)
		return klinesLoadedMsg{gen: gen, points: pts, err: err}
	}
}

func startStreamCmd(ctx context.Context, s TickStream, gen int) tea.Cmd {
	return func() tea.Msg {
		return streamStartedMsg{gen: gen, err: s.Start(ctx)}
	}
}

func nextTickCmd(ctx context.Context, s TickStream, gen int) tea.Cmd {
	return func() tea.Msg {
		t, err := s.Next(ctx)
		return tradeTickMsg{gen: gen, tick: t, err: err}
	}
}

func flushAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return flushMsg{gen: gen} })
}

func (m *AppModel) loadBotsCmd() tea.Cmd {
	return func() tea.Msg {
		bots, err := m.deps.Bots.List(m.ctx)
		return botsLoadedMsg{bots: bots, err: err}
	}
}

func (m *AppModel) createBotCmd(cfg algo.BotConfig) tea.Cmd {
	return func() tea.Msg {
		bot, err := m.deps.Bots.Create(m.ctx, cfg)
		return botSavedMsg{bot: bot, err: err}
	}
}

func (m *AppModel) stopBotCmd(id string) tea.Cmd {
	return func() tea.Msg {
		bot, err := m.deps.Bots.Stop(m.ctx, id)
		return botSavedMsg{bot: bot, err: err}
	}
}

func (m *AppModel) loadHoldingsCmd() tea.Cmd {
	return func() tea.Msg {
		holdings, err := portfolio.Load(m.ctx, m.deps.Store)
		return holdingsLoadedMsg{holdings: holdings, err: err}
	}
}

func (m *AppModel) loadQuotesCmd() tea.Cmd {
	m.quotesFetch.begin()
	gen := m.quotesFetch.gen
	ids := portfolio.CoinIDs(m.Holdings)
	return func() tea.Msg {
		if len(ids) == 0 {
			return quotesLoadedMsg{gen: gen, quotes: map[string]portfolio.Quote{}}
		}
		coins, err := m.deps.Markets.GetMarkets(m.ctx, api.MarketsQuery{IDs: ids, PerPage: len(ids)})
		if err != nil {
			return quotesLoadedMsg{gen: gen, err: err}
		}
		quotes := make(map[string]portfolio.Quote, len(coins))
		for _, c := range coins {
			quotes[c.ID] = portfolio.Quote{Price: c.CurrentPrice, ChangePct24h: c.PriceChangePercentage24h}
		}
		return quotesLoadedMsg{gen: gen, quotes: quotes}
	}
}

func (m *AppModel) loadWalletsCmd() tea.Cmd {
	return func() tea.Msg {
		wallets, err := storage.LoadWallets(m.ctx, m.deps.Store)
		return walletsLoadedMsg{wallets: wallets, err: err}
	}
}

func (m *AppModel) loadChatCmd() tea.Cmd {
	return func() tea.Msg {
		transcript, err := m.deps.Assistant.Load(m.ctx)
		return chatLoadedMsg{transcript: transcript, err: err}
	}
}

func (m *AppModel) replyCmd(input string) tea.Cmd {
	transcript := append([]assistant.Message(nil), m.Chat...)
	mc := m.marketContext()
	return func() tea.Msg {
		out, err := m.deps.Assistant.Reply(m.ctx, transcript, input, mc)
		return chatRepliedMsg{transcript: out, err: err}
	}
}

func (m *AppModel) clearChatCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.deps.Assistant.Clear(m.ctx)
		return chatRepliedMsg{transcript: out, err: err}
	}
}

// saveCmd persists a snapshot taken now, not when the command runs.
func (m *AppModel) saveCmd(what string, save func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{what: what, err: save(m.ctx)}
	}
}

// ignorable reports errors that come from shutting a stream down on purpose.
func ignorable(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, api.ErrStreamClosed)
}
