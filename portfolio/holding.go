package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptosage/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidHolding = errors.New("invalid holding")

// Holding is an amount of one coin the user owns.
type Holding struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	CoinID    string          `json:"coin_id"`
	Amount    decimal.Decimal `json:"amount"`
	CostBasis decimal.Decimal `json:"cost_basis"` // total USD paid, zero when unknown
	AddedAt   time.Time       `json:"added_at"`
}

// NewHolding parses user input. coinID defaults to the lower-cased symbol
// and costBasis may be empty.
func NewHolding(symbol, coinID, amount, costBasis string, now time.Time) (Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Holding{}, fmt.Errorf("%w: symbol is required", ErrInvalidHolding)
	}

	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Holding{}, fmt.Errorf("%w: amount %q is not a number", ErrInvalidHolding, amount)
	}
	if !amt.IsPositive() {
		return Holding{}, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidHolding)
	}

	cost := decimal.Zero
	if s := strings.TrimSpace(costBasis); s != "" {
		cost, err = decimal.NewFromString(s)
		if err != nil || cost.IsNegative() {
			return Holding{}, fmt.Errorf("%w: cost basis %q is not a non-negative number", ErrInvalidHolding, costBasis)
		}
	}

	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" {
		coinID = strings.ToLower(symbol)
	}

	return Holding{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		CoinID:    coinID,
		Amount:    amt,
		CostBasis: cost,
		AddedAt:   now,
	}, nil
}

// Remove returns holdings without the one whose id matches.
func Remove(holdings []Holding, id string) []Holding {
	out := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

// CoinIDs returns the distinct market-data ids of holdings in order.
func CoinIDs(holdings []Holding) []string {
	seen := make(map[string]bool, len(holdings))
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if !seen[h.CoinID] {
			seen[h.CoinID] = true
			ids = append(ids, h.CoinID)
		}
	}
	return ids
}

func Load(ctx context.Context, s storage.Store) ([]Holding, error) {
	return storage.LoadOr(ctx, s, storage.KeyHoldings, []Holding{})
}

func Save(ctx context.Context, s storage.Store, holdings []Holding) error {
	return s.Save(ctx, storage.KeyHoldings, holdings)
}
