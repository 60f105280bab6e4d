package assistant

import (
	"context"
	"testing"
	"time"

	"cryptosage/api"
	"cryptosage/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(t *testing.T) (*Assistant, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	a := New(store, nil)
	a.now = func() time.Time { return time.Date(2025, 3, 27, 9, 0, 0, 0, time.UTC) }
	return a, store
}

func TestLoadStartsWithGreeting(t *testing.T) {
	a, _ := newTestAssistant(t)

	msgs, err := a.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, GreetingText, msgs[0].Content)
}

func TestReplyPersistsTranscript(t *testing.T) {
	ctx := context.Background()
	a, store := newTestAssistant(t)

	msgs, err := a.Load(ctx)
	require.NoError(t, err)

	msgs, err = a.Reply(ctx, msgs, "  how do grid bots work? ", MarketContext{})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "how do grid bots work?", msgs[1].Content)
	assert.Contains(t, msgs[2].Content, "Grid Bot")

	same, err := a.Reply(ctx, msgs, "   ", MarketContext{})
	require.NoError(t, err)
	assert.Len(t, same, 3)

	reloaded, err := New(store, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, msgs, reloaded)

	cleared, err := a.Clear(ctx)
	require.NoError(t, err)
	require.Len(t, cleared, 1)
	assert.Equal(t, GreetingText, cleared[0].Content)
}

func TestSaveKeepsRecentMessages(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAssistant(t)

	var msgs []Message
	for i := 0; i < MaxTranscript+5; i++ {
		msgs = append(msgs, a.message(RoleUser, "m"))
	}
	msgs[len(msgs)-1].Content = "last"
	require.NoError(t, a.Save(ctx, msgs))

	loaded, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, MaxTranscript)
	assert.Equal(t, "last", loaded[len(loaded)-1].Content)
}

func TestRespond(t *testing.T) {
	sentiment := &api.Sentiment{
		Now:       api.FearGreedEntry{Value: 20, Classification: "Extreme Fear"},
		Yesterday: &api.FearGreedEntry{Value: 30},
	}
	mc := MarketContext{Symbol: "ETH", LastPrice: 3120.4, HasPrice: true, ChangePct: 1.5, Interval: "1D", Sentiment: sentiment, ActiveBots: 2}

	tests := []struct {
		input string
		mc    MarketContext
		want  string
	}{
		{"Set up a DCA bot", mc, "DCA Bot"},
		{"what about grids", mc, "Grid Bot"},
		{"signal bot please", mc, "Signal Bot"},
		{"show me the presets", mc, "- moderate: 2.5% take profit, 5.0% stop loss, 20 grid levels"},
		{"market sentiment?", mc, "index is 20 (Extreme Fear). Extreme Fear: the market is fragile. That is -10 since yesterday."},
		{"market sentiment?", MarketContext{}, "hasn't loaded"},
		{"how are my bots", mc, "You have 2 active bots"},
		{"price?", mc, "ETH is trading at $3120. Over the 1D chart it moved +1.50%."},
		{"eth", mc, "ETH is trading at"},
		{"price?", MarketContext{}, "I don't have a price for BTC yet"},
		{"hi", mc, "I can explain"},
		{"this is unrelated", mc, "I'm not sure"},
	}
	for _, tt := range tests {
		assert.Contains(t, Respond(tt.input, tt.mc), tt.want, tt.input)
	}
}
