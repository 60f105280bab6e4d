package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cryptosage/logging"

	"go.uber.org/zap"
)

const (
	CryptoCompareURL = "https://min-api.cryptocompare.com"
	DefaultNewsCount = 5
)

// NewsClient reads headlines from CryptoCompare.
type NewsClient struct {
	HTTPClient *http.Client
	BaseURL    string
	logger     *zap.Logger
}

func NewNewsClient(baseURL string, timeout time.Duration, logger *zap.Logger) *NewsClient {
	if baseURL == "" {
		baseURL = CryptoCompareURL
	}
	logger = logging.OrNop(logger)
	return &NewsClient{
		HTTPClient: newHTTPClient(timeout),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type NewsItem struct {
	Title       string
	Source      string
	URL         string
	PublishedAt time.Time
}

// GetLatest returns up to n of the newest English headlines.
func (c *NewsClient) GetLatest(ctx context.Context, n int) ([]NewsItem, error) {
	var resp struct {
		Data []struct {
			Title       string `json:"title"`
			Source      string `json:"source"`
			URL         string `json:"url"`
			PublishedOn int64  `json:"published_on"`
		} `json:"Data"`
	}
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/data/v2/news/?lang=EN", &resp); err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	if n <= 0 {
		n = DefaultNewsCount
	}
	items := make([]NewsItem, 0, n)
	for _, d := range resp.Data {
		if len(items) == n {
			break
		}
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		item := NewsItem{Title: d.Title, Source: d.Source, URL: d.URL}
		if d.PublishedOn > 0 {
			item.PublishedAt = time.Unix(d.PublishedOn, 0)
		}
		items = append(items, item)
	}
	return items, nil
}
