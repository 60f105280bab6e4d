package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultWatchlist is used until the user edits the watchlist.
var DefaultWatchlist = []string{"bitcoin", "ethereum", "solana"}

// Watchlist holds market-data ids in display order.
type Watchlist struct {
	IDs []string `json:"ids"`
}

func (w Watchlist) Contains(id string) bool {
	for _, v := range w.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if it is new. It reports whether the list changed.
func (w *Watchlist) Add(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || w.Contains(id) {
		return false
	}
	w.IDs = append(w.IDs, id)
	return true
}

// Remove drops id. It reports whether the list changed.
func (w *Watchlist) Remove(id string) bool {
	for i, v := range w.IDs {
		if v == id {
			w.IDs = append(w.IDs[:i], w.IDs[i+1:]...)
			return true
		}
	}
	return false
}

func LoadWatchlist(ctx context.Context, s Store) (Watchlist, error) {
	ids := make([]string, len(DefaultWatchlist))
	copy(ids, DefaultWatchlist)
	return LoadOr(ctx, s, KeyWatchlist, Watchlist{IDs: ids})
}

func SaveWatchlist(ctx context.Context, s Store, w Watchlist) error {
	return s.Save(ctx, KeyWatchlist, w)
}

// Wallet is an on-chain address the user tracks.
type Wallet struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Address string    `json:"address"`
	AddedAt time.Time `json:"added_at"`
}

// NewWallet validates address and fills in an id. An empty label is
// replaced by a shortened address.
func NewWallet(label, address string, now time.Time) (Wallet, error) {
	address = strings.TrimSpace(address)
	if len(address) < 8 || strings.ContainsAny(address, " \t\n") {
		return Wallet{}, fmt.Errorf("invalid wallet address %q", address)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = address[:4] + "..." + address[len(address)-4:]
	}
	return Wallet{
		ID:      uuid.NewString(),
		Label:   label,
		Address: address,
		AddedAt: now,
	}, nil
}

func LoadWallets(ctx context.Context, s Store) ([]Wallet, error) {
	return LoadOr(ctx, s, KeyWallets, []Wallet{})
}

func SaveWallets(ctx context.Context, s Store, wallets []Wallet) error {
	return s.Save(ctx, KeyWallets, wallets)
}
