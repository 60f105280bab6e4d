package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"cryptosage/config"
)

// SchemaVersion tags every record written by this build.
const SchemaVersion = 1

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnsupportedSchema = errors.New("unsupported schema version")
	ErrInvalidKey        = errors.New("invalid record key")
)

// Record keys.
const (
	KeyWatchlist = "watchlist"
	KeyHoldings  = "holdings"
	KeyWallets   = "wallets"
	KeyChat      = "chat"
	KeyBots      = "bots"
)

// Store persists JSON records by key.
type Store interface {
	Load(ctx context.Context, key string, v any) error
	Save(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Data          json.RawMessage `json:"data"`
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func encode(v any, now time.Time) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	out, err := json.MarshalIndent(envelope{
		SchemaVersion: SchemaVersion,
		UpdatedAt:     now.UTC(),
		Data:          data,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return out, nil
}

func decode(raw []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.SchemaVersion < 1 || env.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.SchemaVersion)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}

// LoadOr loads key into a value of type T, returning def when the record
// does not exist yet.
func LoadOr[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	var v T
	err := s.Load(ctx, key, &v)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return v, nil
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "redis":
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
