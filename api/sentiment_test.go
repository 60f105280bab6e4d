package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fngBody(values ...int) string {
	rows := make([]string, len(values))
	for i, v := range values {
		rows[i] = fmt.Sprintf(`{"value":"%d","value_classification":"Class%d","timestamp":"%d"}`, v, v, 1700000000-i*86400)
	}
	return `{"name":"Fear and Greed Index","data":[` + strings.Join(rows, ",") + `]}`
}

func sentimentServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fng/", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetFearGreedFullHistory(t *testing.T) {
	srv := sentimentServer(t, fngBody(72, 65, 60, 58, 55, 50, 45, 40, 38, 30))

	s, err := NewSentimentClient(srv.URL, 0, nil).GetFearGreed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 72, s.Now.Value)
	assert.Equal(t, "Class72", s.Now.Classification)
	assert.Equal(t, int64(1700000000), s.Now.Timestamp.Unix())
	require.NotNil(t, s.Yesterday)
	assert.Equal(t, 65, s.Yesterday.Value)
	require.NotNil(t, s.LastWeek)
	assert.Equal(t, 40, s.LastWeek.Value)
	assert.Equal(t, 7, s.Trend())
}

func TestGetFearGreedMissingHistory(t *testing.T) {
	srv := sentimentServer(t, fngBody(20))

	s, err := NewSentimentClient(srv.URL, 0, nil).GetFearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, s.Now.Value)
	assert.Nil(t, s.Yesterday)
	assert.Nil(t, s.LastWeek)
	assert.Equal(t, 0, s.Trend())
}

func TestGetFearGreedSkipsBadRows(t *testing.T) {
	srv := sentimentServer(t, `{"data":[{"value":"44","value_classification":"Fear"},{"value":"n/a"}]}`)

	s, err := NewSentimentClient(srv.URL, 0, nil).GetFearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 44, s.Now.Value)
	assert.Nil(t, s.Yesterday)
}

func TestGetFearGreedNoCurrentReading(t *testing.T) {
	srv := sentimentServer(t, `{"data":[]}`)

	_, err := NewSentimentClient(srv.URL, 0, nil).GetFearGreed(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestGetFearGreedBadJSON(t *testing.T) {
	srv := sentimentServer(t, `<html>`)

	_, err := NewSentimentClient(srv.URL, 0, nil).GetFearGreed(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSentimentInsight(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "Extreme Fear"},
		{24, "Extreme Fear"},
		{25, "Fear"},
		{49, "Fear"},
		{50, "Neutral"},
		{74, "Neutral"},
		{75, "Greed"},
		{100, "Greed"},
	}
	for _, tt := range tests {
		s := Sentiment{Now: FearGreedEntry{Value: tt.value}}
		assert.True(t, strings.HasPrefix(s.Insight(), tt.want+":"), "value %d: %s", tt.value, s.Insight())
	}
}
