package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "profile"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 27, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFileStoreSaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sample", sample{Name: "btc", Value: 1.5}))

	var got sample
	require.NoError(t, s.Load(ctx, "sample", &got))
	assert.Equal(t, sample{Name: "btc", Value: 1.5}, got)

	info, err := os.Stat(filepath.Join(s.Dir(), "sample.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreWritesEnvelope(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), "sample", sample{Name: "eth"}))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "sample.json"))
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.JSONEq(t, `1`, string(env["schema_version"]))
	assert.JSONEq(t, `"2025-03-27T12:00:00Z"`, string(env["updated_at"]))
	assert.JSONEq(t, `{"name":"eth","value":0}`, string(env["data"]))
}

func TestFileStoreMissingKey(t *testing.T) {
	s := newTestStore(t)

	var got sample
	assert.ErrorIs(t, s.Load(context.Background(), "nothing", &got), ErrNotFound)
	assert.NoError(t, s.Delete(context.Background(), "nothing"))
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sample", sample{}))
	require.NoError(t, s.Delete(ctx, "sample"))

	var got sample
	assert.ErrorIs(t, s.Load(ctx, "sample", &got), ErrNotFound)
}

func TestFileStoreRejectsNewerSchema(t *testing.T) {
	s := newTestStore(t)
	body := `{"schema_version": 99, "updated_at": "2030-01-01T00:00:00Z", "data": {}}`
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "future.json"), []byte(body), 0600))

	var got sample
	assert.ErrorIs(t, s.Load(context.Background(), "future", &got), ErrUnsupportedSchema)
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{"", "../escape", "UPPER", "a/b"} {
		assert.ErrorIs(t, s.Save(context.Background(), key, sample{}), ErrInvalidKey, key)
	}
}

func TestLoadOrDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := LoadOr(ctx, s, "sample", sample{Name: "default"})
	require.NoError(t, err)
	assert.Equal(t, "default", got.Name)

	require.NoError(t, s.Save(ctx, "sample", sample{Name: "saved"}))
	got, err = LoadOr(ctx, s, "sample", sample{Name: "default"})
	require.NoError(t, err)
	assert.Equal(t, "saved", got.Name)
}

func TestWatchlistRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w, err := LoadWatchlist(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, w.IDs)

	assert.True(t, w.Add(" Cardano "))
	assert.False(t, w.Add("bitcoin"))
	assert.False(t, w.Add(""))
	assert.True(t, w.Remove("ethereum"))
	assert.False(t, w.Remove("ethereum"))
	require.NoError(t, SaveWatchlist(ctx, s, w))

	got, err := LoadWatchlist(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "solana", "cardano"}, got.IDs)

	// the default list is never aliased
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, DefaultWatchlist)
}

func TestWalletRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)

	_, err := NewWallet("cold", "abc", now)
	assert.Error(t, err)

	w, err := NewWallet("", "0x1234567890abcdef", now)
	require.NoError(t, err)
	assert.Equal(t, "0x12...cdef", w.Label)
	assert.NotEmpty(t, w.ID)

	empty, err := LoadWallets(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, SaveWallets(ctx, s, []Wallet{w}))
	got, err := LoadWallets(ctx, s)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, w.Address, got[0].Address)
	assert.True(t, w.AddedAt.Equal(got[0].AddedAt))
}
