package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptosage/api"
	"cryptosage/logging"
	"cryptosage/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role says who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

const GreetingText = "Hello! I'm your AI trading assistant. Would you like to configure a DCA Bot, a Grid Bot, or something else?"

// MaxTranscript is how many messages are kept when saving.
const MaxTranscript = 200

type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// MarketContext is what the assistant knows about the screen the user is on.
type MarketContext struct {
	Symbol     string
	LastPrice  float64
	HasPrice   bool
	ChangePct  float64
	Interval   string
	Sentiment  *api.Sentiment
	ActiveBots int
}

// Assistant answers chat messages with local rules and keeps the
// transcript in the store.
type Assistant struct {
	store  storage.Store
	now    func() time.Time
	logger *zap.Logger
}

func New(store storage.Store, logger *zap.Logger) *Assistant {
	logger = logging.OrNop(logger)
	return &Assistant{store: store, now: time.Now, logger: logger}
}

func (a *Assistant) message(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content, Time: a.now()}
}

// Greeting is the first message of an empty transcript.
func (a *Assistant) Greeting() Message {
	return a.message(RoleAssistant, GreetingText)
}

// Load returns the saved transcript, or just the greeting when there is none.
func (a *Assistant) Load(ctx context.Context) ([]Message, error) {
	msgs, err := storage.LoadOr(ctx, a.store, storage.KeyChat, []Message{})
	if err != nil {
		return []Message{a.Greeting()}, fmt.Errorf("failed to load chat history: %w", err)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, a.Greeting())
	}
	return msgs, nil
}

// Save stores the most recent MaxTranscript messages.
func (a *Assistant) Save(ctx context.Context, transcript []Message) error {
	if len(transcript) > MaxTranscript {
		transcript = transcript[len(transcript)-MaxTranscript:]
	}
	if err := a.store.Save(ctx, storage.KeyChat, transcript); err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

// Clear drops the saved transcript and starts over with the greeting.
func (a *Assistant) Clear(ctx context.Context) ([]Message, error) {
	if err := a.store.Delete(ctx, storage.KeyChat); err != nil {
		return nil, fmt.Errorf("failed to clear chat history: %w", err)
	}
	return []Message{a.Greeting()}, nil
}

// Reply appends the user's input and an answer to transcript and saves the
// result. Blank input returns transcript unchanged. The returned transcript
// is valid even when saving fails.
func (a *Assistant) Reply(ctx context.Context, transcript []Message, input string, mc MarketContext) ([]Message, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return transcript, nil
	}

	out := make([]Message, 0, len(transcript)+2)
	out = append(out, transcript...)
	out = append(out, a.message(RoleUser, input))
	out = append(out, a.message(RoleAssistant, Respond(input, mc)))

	a.logger.Debug("chat reply", zap.Int("messages", len(out)))
	if err := a.Save(ctx, out); err != nil {
		return out, err
	}
	return out, nil
}
