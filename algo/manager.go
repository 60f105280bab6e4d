package algo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptosage/logging"
	"cryptosage/storage"

	"go.uber.org/zap"
)

var (
	ErrBotNotFound  = errors.New("bot not found")
	ErrDuplicateBot = errors.New("a bot with this name already exists")
)

// Manager loads and saves bot configurations.
type Manager struct {
	store       storage.Store
	maxExposure float64
	now         func() time.Time
	logger      *zap.Logger
}

// NewManager creates a manager. maxExposure caps the combined exposure of
// active bots; zero disables the cap.
func NewManager(store storage.Store, maxExposure float64, logger *zap.Logger) *Manager {
	logger = logging.OrNop(logger)
	return &Manager{
		store:       store,
		maxExposure: maxExposure,
		now:         time.Now,
		logger:      logger,
	}
}

// List returns every saved bot, oldest first.
func (m *Manager) List(ctx context.Context) ([]BotConfig, error) {
	bots, err := storage.LoadOr(ctx, m.store, storage.KeyBots, []BotConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to load bots: %w", err)
	}
	return bots, nil
}

// Create saves a new bot. Names are unique, case-insensitively.
func (m *Manager) Create(ctx context.Context, bot BotConfig) (BotConfig, error) {
	bots, err := m.List(ctx)
	if err != nil {
		return BotConfig{}, err
	}
	for _, b := range bots {
		if strings.EqualFold(b.Name, bot.Name) {
			return BotConfig{}, fmt.Errorf("%w: %s", ErrDuplicateBot, bot.Name)
		}
	}

	if bot.Status == "" {
		bot.Status = StatusActive
	}
	if bot.CreatedAt.IsZero() {
		bot.CreatedAt = m.now()
	}

	bots = append(bots, bot)
	if err := ValidateExposure(bots, m.maxExposure); err != nil {
		return BotConfig{}, err
	}
	if err := m.store.Save(ctx, storage.KeyBots, bots); err != nil {
		return BotConfig{}, fmt.Errorf("failed to save bots: %w", err)
	}

	m.logger.Info("bot created",
		zap.String("id", bot.ID),
		zap.String("name", bot.Name),
		zap.String("kind", string(bot.Kind)),
		zap.String("pair", bot.Pair))
	return bot, nil
}

// Stop marks a bot stopped. Stopping a stopped bot is a no-op.
func (m *Manager) Stop(ctx context.Context, id string) (BotConfig, error) {
	bots, err := m.List(ctx)
	if err != nil {
		return BotConfig{}, err
	}

	for i := range bots {
		if bots[i].ID != id {
			continue
		}
		if bots[i].Status == StatusStopped {
			return bots[i], nil
		}
		now := m.now()
		bots[i].Status = StatusStopped
		bots[i].StoppedAt = &now
		if err := m.store.Save(ctx, storage.KeyBots, bots); err != nil {
			return BotConfig{}, fmt.Errorf("failed to save bots: %w", err)
		}
		m.logger.Info("bot stopped", zap.String("id", id), zap.String("name", bots[i].Name))
		return bots[i], nil
	}
	return BotConfig{}, fmt.Errorf("%w: %s", ErrBotNotFound, id)
}

// Delete removes a bot permanently.
func (m *Manager) Delete(ctx context.Context, id string) error {
	bots, err := m.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]BotConfig, 0, len(bots))
	for _, b := range bots {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(bots) {
		return fmt.Errorf("%w: %s", ErrBotNotFound, id)
	}
	if err := m.store.Save(ctx, storage.KeyBots, kept); err != nil {
		return fmt.Errorf("failed to save bots: %w", err)
	}
	return nil
}

// Find looks a bot up by id or, failing that, by name.
func (m *Manager) Find(ctx context.Context, ref string) (BotConfig, error) {
	bots, err := m.List(ctx)
	if err != nil {
		return BotConfig{}, err
	}
	for _, b := range bots {
		if b.ID == ref {
			return b, nil
		}
	}
	for _, b := range bots {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	return BotConfig{}, fmt.Errorf("%w: %s", ErrBotNotFound, ref)
}
