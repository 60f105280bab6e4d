package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cryptosage/chart"
	"cryptosage/logging"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrStreamClosed is returned by Next once the stream has been stopped.
var ErrStreamClosed = errors.New("trade stream closed")

const tickBuffer = 256

// tradeMessage is the exchange trade event. The trade id is declared so
// that "t" is not folded into "T" by case-insensitive matching.
type tradeMessage struct {
	TradeID   int64  `json:"t"`
	Price     string `json:"p"`
	TradeTime int64  `json:"T"`
}

// TradeStream relays trades for one symbol from the exchange websocket.
// A read failure ends the stream; it is never redialled.
type TradeStream struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger

	conn      *websocket.Conn
	ticks     chan chart.Tick
	errs      chan error
	stopChan  chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.RWMutex
}

// NewTradeStream creates a stream for symbol's USDT pair under baseURL.
func NewTradeStream(baseURL, symbol string, logger *zap.Logger) *TradeStream {
	if baseURL == "" {
		baseURL = BinanceStreamURL
	}
	logger = logging.OrNop(logger)
	return &TradeStream{
		url:      StreamURL(baseURL, symbol),
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   logger,
		ticks:    make(chan chart.Tick, tickBuffer),
		errs:     make(chan error, 1),
		stopChan: make(chan struct{}),
	}
}

// StreamURL returns the trade stream address for symbol, for example
// wss://.../ws/btcusdt@trade.
func StreamURL(baseURL, symbol string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.ToLower(PairSymbol(symbol)) + "@trade"
}

func (s *TradeStream) URL() string { return s.url }

// Start dials the stream and begins reading. Calling Start on a running
// stream does nothing.
func (s *TradeStream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	select {
	case <-s.stopChan:
		return ErrStreamClosed
	default:
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to dial %s: %v", ErrTransport, s.url, err)
	}
	s.conn = conn
	s.isRunning = true

	s.logger.Info("trade stream started", zap.String("url", s.url))
	go s.readLoop(conn)
	return nil
}

func (s *TradeStream) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.finish(err)
			return
		}

		var msg tradeMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Price == "" {
			// subscription acks and malformed frames
			continue
		}
		tick := chart.Tick{Price: msg.Price, TradeTime: msg.TradeTime}

		select {
		case s.ticks <- tick:
		case <-s.stopChan:
			return
		default:
			// Consumer is behind; the ingestion gate would drop this anyway
		}
	}
}

func (s *TradeStream) finish(err error) {
	select {
	case <-s.stopChan:
		return
	default:
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Warn("trade stream ended", zap.String("url", s.url), zap.Error(err))
	select {
	case s.errs <- fmt.Errorf("%w: trade stream: %v", ErrTransport, err):
	default:
	}
}

// Ticks delivers trades as they arrive.
func (s *TradeStream) Ticks() <-chan chart.Tick { return s.ticks }

// Errors delivers at most one terminal error.
func (s *TradeStream) Errors() <-chan error { return s.errs }

// Next blocks until a trade, the terminal error, a stop or ctx is done.
func (s *TradeStream) Next(ctx context.Context) (chart.Tick, error) {
	select {
	case t := <-s.ticks:
		return t, nil
	case err := <-s.errs:
		return chart.Tick{}, err
	case <-s.stopChan:
		return chart.Tick{}, ErrStreamClosed
	case <-ctx.Done():
		return chart.Tick{}, ctx.Err()
	}
}

// Stop closes the connection. It is safe to call more than once.
func (s *TradeStream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		defer s.mu.Unlock()

		s.isRunning = false
		if s.conn != nil {
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			_ = s.conn.Close()
		}
		s.logger.Info("trade stream stopped", zap.String("url", s.url))
	})
}

// IsRunning returns whether the stream is connected and reading.
func (s *TradeStream) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isRunning
}
