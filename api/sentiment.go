package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptosage/logging"

	"go.uber.org/zap"
)

const FearGreedURL = "https://api.alternative.me"

// SentimentClient reads the Fear & Greed index.
type SentimentClient struct {
	HTTPClient *http.Client
	BaseURL    string
	logger     *zap.Logger
}

func NewSentimentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SentimentClient {
	if baseURL == "" {
		baseURL = FearGreedURL
	}
	logger = logging.OrNop(logger)
	return &SentimentClient{
		HTTPClient: newHTTPClient(timeout),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// FearGreedEntry is one daily reading, 0 (extreme fear) to 100 (extreme greed).
type FearGreedEntry struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

// Sentiment holds today's reading and, when published, the readings from
// one day and one week earlier.
type Sentiment struct {
	Now       FearGreedEntry
	Yesterday *FearGreedEntry
	LastWeek  *FearGreedEntry
}

type fngResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
}

// GetFearGreed fetches the index history and picks out now, yesterday and
// last week. Only the current reading is required.
func (c *SentimentClient) GetFearGreed(ctx context.Context) (Sentiment, error) {
	var resp fngResponse
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/fng/?limit=10", &resp); err != nil {
		return Sentiment{}, fmt.Errorf("failed to get fear and greed index: %w", err)
	}

	entries := make([]*FearGreedEntry, len(resp.Data))
	for i, d := range resp.Data {
		v, err := strconv.Atoi(strings.TrimSpace(d.Value))
		if err != nil {
			continue
		}
		e := &FearGreedEntry{Value: v, Classification: d.ValueClassification}
		if ts, err := strconv.ParseInt(d.Timestamp, 10, 64); err == nil {
			e.Timestamp = time.Unix(ts, 0)
		}
		entries[i] = e
	}

	at := func(i int) *FearGreedEntry {
		if i < len(entries) {
			return entries[i]
		}
		return nil
	}

	now := at(0)
	if now == nil {
		return Sentiment{}, fmt.Errorf("failed to get fear and greed index: %w: no current reading", ErrDecode)
	}

	s := Sentiment{Now: *now, Yesterday: at(1), LastWeek: at(7)}
	c.logger.Debug("sentiment loaded", zap.Int("value", s.Now.Value))
	return s, nil
}

// Insight is a one-line reading of the current index.
func (s Sentiment) Insight() string {
	switch v := s.Now.Value; {
	case v < 25:
		return "Extreme Fear: the market is fragile."
	case v < 50:
		return "Fear: selective buying might be possible."
	case v < 75:
		return "Neutral: monitor momentum."
	default:
		return "Greed: potential profit-taking."
	}
}

// Trend is the change against yesterday, or 0 when yesterday is unknown.
func (s Sentiment) Trend() int {
	if s.Yesterday == nil {
		return 0
	}
	return s.Now.Value - s.Yesterday.Value
}
