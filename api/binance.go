package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptosage/chart"
	"cryptosage/logging"

	"go.uber.org/zap"
)

const (
	BinanceURL         = "https://api.binance.com"
	BinanceFallbackURL = "https://api.binance.us"
	BinanceStreamURL   = "wss://stream.binance.com:9443/ws"
)

// BinanceClient fetches historical klines. Requests refused with HTTP 451
// by the primary host are repeated once against FallbackURL.
type BinanceClient struct {
	HTTPClient  *http.Client
	BaseURL     string
	FallbackURL string
	logger      *zap.Logger
}

// NewBinanceClient creates a klines client.
func NewBinanceClient(baseURL, fallbackURL string, timeout time.Duration, logger *zap.Logger) *BinanceClient {
	if baseURL == "" {
		baseURL = BinanceURL
	}
	logger = logging.OrNop(logger)
	return &BinanceClient{
		HTTPClient:  newHTTPClient(timeout),
		BaseURL:     strings.TrimRight(baseURL, "/"),
		FallbackURL: strings.TrimRight(fallbackURL, "/"),
		logger:      logger,
	}
}

// PairSymbol turns a coin symbol such as "btc" into its USDT pair "BTCUSDT".
func PairSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "USDT"
}

func klinesURL(base, symbol string, iv chart.Interval) string {
	q := url.Values{}
	q.Set("symbol", PairSymbol(symbol))
	q.Set("interval", iv.Code)
	q.Set("limit", strconv.Itoa(iv.RequestLimit()))
	return base + "/api/v3/klines?" + q.Encode()
}

// GetKlines returns the close-price series for symbol over iv, oldest
// first. An empty series with a nil error means the exchange had no usable
// records.
func (c *BinanceClient) GetKlines(ctx context.Context, symbol string, iv chart.Interval) ([]chart.Point, error) {
	body, err := get(ctx, c.HTTPClient, klinesURL(c.BaseURL, symbol, iv))
	if errors.Is(err, ErrRegionBlocked) && c.FallbackURL != "" {
		c.logger.Info("primary klines host region blocked, using fallback",
			zap.String("symbol", symbol),
			zap.String("fallback", c.FallbackURL))
		body, err = get(ctx, c.HTTPClient, klinesURL(c.FallbackURL, symbol, iv))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", PairSymbol(symbol), err)
	}

	points, err := chart.NormalizeKlines(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode klines for %s: %w: %w", PairSymbol(symbol), ErrDecode, err)
	}

	c.logger.Debug("klines loaded",
		zap.String("symbol", symbol),
		zap.String("interval", iv.Label),
		zap.Int("points", len(points)))
	return points, nil
}
