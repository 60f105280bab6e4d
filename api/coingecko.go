package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cryptosage/heatmap"
	"cryptosage/logging"

	"go.uber.org/zap"
)

const CoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient reads market listings and trending coins.
type CoinGeckoClient struct {
	HTTPClient *http.Client
	BaseURL    string
	logger     *zap.Logger
}

func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = CoinGeckoURL
	}
	logger = logging.OrNop(logger)
	return &CoinGeckoClient{
		HTTPClient: newHTTPClient(timeout),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Coin is one row of the markets listing. Missing numbers decode as zero.
type Coin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	TotalVolume              float64 `json:"total_volume"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	CirculatingSupply        float64 `json:"circulating_supply"`
}

// MarketsQuery narrows a markets request. Zero values take the defaults.
type MarketsQuery struct {
	IDs     []string
	PerPage int
	Page    int
}

func (c *CoinGeckoClient) marketsURL(q MarketsQuery) string {
	if q.PerPage <= 0 {
		q.PerPage = 100
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	v := url.Values{}
	v.Set("vs_currency", "usd")
	v.Set("order", "market_cap_desc")
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("sparkline", "false")
	v.Set("price_change_percentage", "24h")
	if len(q.IDs) > 0 {
		v.Set("ids", strings.Join(q.IDs, ","))
	}
	return c.BaseURL + "/coins/markets?" + v.Encode()
}

// GetMarkets returns coins ordered by market cap.
func (c *CoinGeckoClient) GetMarkets(ctx context.Context, q MarketsQuery) ([]Coin, error) {
	coins, skipped, err := getRows[Coin](ctx, c.HTTPClient, c.marketsURL(q))
	if err != nil {
		return nil, fmt.Errorf("failed to get markets: %w", err)
	}
	c.logger.Debug("markets loaded", zap.Int("coins", len(coins)), zap.Int("skipped", skipped))
	return coins, nil
}

// GetHeatmapTiles returns the top perPage coins as heat map tiles.
func (c *CoinGeckoClient) GetHeatmapTiles(ctx context.Context, perPage int) ([]heatmap.Tile, error) {
	tiles, skipped, err := getRows[heatmap.Tile](ctx, c.HTTPClient, c.marketsURL(MarketsQuery{PerPage: perPage}))
	if err != nil {
		return nil, fmt.Errorf("failed to get heat map tiles: %w", err)
	}
	c.logger.Debug("heat map loaded", zap.Int("tiles", len(tiles)), zap.Int("skipped", skipped))
	return tiles, nil
}

// TrendingCoin is a coin from the search-trending list. Prices are quoted
// in BTC; convert with a BTC/USD price when one is known.
type TrendingCoin struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	MarketCapRank int     `json:"market_cap_rank"`
	PriceBTC      float64 `json:"price_btc"`
}

// PriceUSD converts the BTC quote. It returns 0 when btcUSD is unknown.
func (t TrendingCoin) PriceUSD(btcUSD float64) float64 {
	if btcUSD <= 0 || t.PriceBTC <= 0 {
		return 0
	}
	return t.PriceBTC * btcUSD
}

// GetTrending returns the currently trending coins.
func (c *CoinGeckoClient) GetTrending(ctx context.Context) ([]TrendingCoin, error) {
	var resp struct {
		Coins []struct {
			Item TrendingCoin `json:"item"`
		} `json:"coins"`
	}
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/search/trending", &resp); err != nil {
		return nil, fmt.Errorf("failed to get trending coins: %w", err)
	}

	coins := make([]TrendingCoin, 0, len(resp.Coins))
	for _, w := range resp.Coins {
		coins = append(coins, w.Item)
	}
	return coins, nil
}

// SortKey orders the market list.
type SortKey int

const (
	SortByMarketCap SortKey = iota
	SortByPrice
	SortByChange
	SortByName
)

func (k SortKey) String() string {
	switch k {
	case SortByPrice:
		return "Price"
	case SortByChange:
		return "24h Change"
	case SortByName:
		return "Name"
	default:
		return "Market Cap"
	}
}

// Next cycles through the sort keys.
func (k SortKey) Next() SortKey {
	return (k + 1) % 4
}

// SortCoins orders coins in place. Numeric keys sort descending, names
// ascending.
func SortCoins(coins []Coin, key SortKey) {
	sort.SliceStable(coins, func(i, j int) bool {
		a, b := coins[i], coins[j]
		switch key {
		case SortByPrice:
			return a.CurrentPrice > b.CurrentPrice
		case SortByChange:
			return a.PriceChangePercentage24h > b.PriceChangePercentage24h
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return a.MarketCap > b.MarketCap
		}
	})
}
