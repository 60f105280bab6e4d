package models

import (
	"fmt"

	"cryptosage/chart"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// chartPoints is the series currently on screen.
func (m *AppModel) chartPoints() []chart.Point {
	if m.Interval.IsLive() {
		return m.agg.Points()
	}
	return m.Points
}

// IsStreaming reports whether live ticks are being consumed.
func (m *AppModel) IsStreaming() bool { return m.stream != nil }

// reloadChart drops the current series and fetches it again for the
// selected symbol and interval. In live mode the stream opens right away on
// an empty window and the fetched history is merged in behind it when it
// lands.
func (m *AppModel) reloadChart() tea.Cmd {
	m.stopLive()
	m.agg.Reset()
	m.Points = nil
	if m.Interval.IsLive() {
		return tea.Batch(m.loadKlinesCmd(), m.startLive())
	}
	return m.loadKlinesCmd()
}

func (m *AppModel) handleKlines(msg klinesLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.chartFetch.accept(msg.gen, msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("failed to load chart",
			zap.String("symbol", m.Symbol),
			zap.String("interval", m.Interval.Label),
			zap.Error(msg.err))
		if m.Interval.IsLive() && m.IsStreaming() {
			// the stream still feeds the chart
			m.chartFetch.Err = nil
			m.Status = "History unavailable, showing live trades only"
		}
		return m, nil
	}

	if m.Interval.IsLive() {
		m.agg.Seed(msg.points)
		return m, nil
	}
	m.Points = msg.points
	return m, nil
}

// startLive opens a trade stream for the current symbol. Any previous
// stream is stopped first.
func (m *AppModel) startLive() tea.Cmd {
	if m.deps.NewStream == nil {
		return nil
	}
	m.stopLive()
	s := m.deps.NewStream(m.Symbol)
	m.stream = s
	return startStreamCmd(m.ctx, s, m.liveGen)
}

// stopLive closes the stream and invalidates its pending ticks and flush
// timers. It is safe to call when no stream is running.
func (m *AppModel) stopLive() {
	m.liveGen++
	if m.stream != nil {
		m.stream.Stop()
		m.stream = nil
	}
}

func (m *AppModel) streamFailed(err error) {
	m.stopLive()
	m.chartFetch.cancel()
	m.chartFetch.Err = fmt.Errorf("live stream: %w", err)
	m.logger.Warn("live stream failed", zap.String("symbol", m.Symbol), zap.Error(err))
}

func (m *AppModel) handleStreamStarted(msg streamStartedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.liveGen || m.stream == nil {
		return m, nil
	}
	if msg.err != nil {
		if !ignorable(msg.err) {
			m.streamFailed(msg.err)
		}
		return m, nil
	}
	m.logger.Info("live stream started", zap.String("symbol", m.Symbol))
	return m, nextTickCmd(m.ctx, m.stream, m.liveGen)
}

func (m *AppModel) handleTradeTick(msg tradeTickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.liveGen || m.stream == nil {
		return m, nil
	}
	if msg.err != nil {
		if !ignorable(msg.err) {
			m.streamFailed(msg.err)
		}
		return m, nil
	}

	next := nextTickCmd(m.ctx, m.stream, m.liveGen)
	res, err := m.agg.Offer(msg.tick, m.now())
	if err != nil {
		m.logger.Debug("dropping tick", zap.Error(err))
		return m, next
	}
	if res.FlushIn > 0 {
		return m, tea.Batch(next, flushAfter(res.FlushIn, m.liveGen))
	}
	return m, next
}
