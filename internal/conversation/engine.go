// Package conversation runs the food recommendation dialogue as an explicit state machine.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/intent"
	"github.com/ashureev/hungrybot/internal/metrics"
	"github.com/ashureev/hungrybot/internal/reply"
)

// Prompts and replies sent by the dialogue.
const (
	PromptConfirm      = "Do you want restaurant recommendations near you?"
	PromptFoodType     = "Great! What type of food would you like?"
	PromptLocation     = "Where are you right now?"
	ReplyDeclined      = "Bad choice."
	ReplyNotUnderstood = "Sorry, I do not understand what you are saying."
)

// ErrConversationActive is returned by Start when the key already has a conversation.
var ErrConversationActive = errors.New("conversation already active")

// Lookup finds a business for the collected answers.
type Lookup interface {
	Search(ctx context.Context, term, location string) domain.LookupResult
}

// Engine owns every active conversation.
//
// Callers must not deliver two messages for the same key concurrently;
// the router serializes per key. The engine does not de-duplicate messages.
type Engine struct {
	mu     sync.Mutex
	active map[domain.ConversationKey]*domain.Conversation

	lookup  Lookup
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewEngine creates an engine that searches through lookup. logger and m may be nil.
func NewEngine(lookup Lookup, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		active:  make(map[domain.ConversationKey]*domain.Conversation),
		lookup:  lookup,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Start opens a conversation for key and returns its entry message.
func (e *Engine) Start(key domain.ConversationKey) (domain.OutboundReply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.active[key]; exists {
		return domain.OutboundReply{}, ErrConversationActive
	}

	now := e.now()
	conv := &domain.Conversation{
		ID:        e.newID(),
		Key:       key,
		State:     domain.StateAwaitingConfirmation,
		StartedAt: now,
		UpdatedAt: now,
	}
	e.active[key] = conv
	e.metrics.ConversationStarted()

	e.logger.Info("Conversation started",
		"conversation_id", conv.ID,
		"user_id", key.UserID,
		"channel_id", key.ChannelID,
	)
	return domain.TextReply(PromptConfirm), nil
}

// Active reports whether key has a conversation in progress.
func (e *Engine) Active(key domain.ConversationKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.active[key]
	return ok
}

// Len returns the number of conversations in progress.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Handle forwards msg to the conversation for its key.
// It returns false when no conversation is active for that key.
func (e *Engine) Handle(ctx context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool) {
	key := msg.Key()

	e.mu.Lock()
	conv, ok := e.active[key]
	e.mu.Unlock()
	if !ok {
		return domain.OutboundReply{}, false
	}

	from := conv.State
	out := e.advance(ctx, conv, msg)

	e.logger.Info("Conversation advanced",
		"conversation_id", conv.ID,
		"user_id", key.UserID,
		"channel_id", key.ChannelID,
		"from", from.String(),
		"to", conv.State.String(),
	)

	if conv.State.Terminal() {
		e.destroy(conv)
	}
	return out, true
}

// advance applies one message to conv. It is the only code that changes conversation state.
func (e *Engine) advance(ctx context.Context, conv *domain.Conversation, msg domain.InboundMessage) domain.OutboundReply {
	text := strings.TrimSpace(msg.Text)
	conv.UpdatedAt = e.now()

	switch conv.State {
	case domain.StateAwaitingConfirmation:
		switch intent.ClassifyYesNo(text) {
		case intent.Yes:
			conv.State = domain.StateAwaitingFoodType
			return domain.TextReply(PromptFoodType)
		case intent.No:
			conv.State = domain.StateCancelled
			return domain.TextReply(ReplyDeclined)
		default:
			return domain.TextReply(ReplyNotUnderstood)
		}

	case domain.StateAwaitingFoodType:
		conv.Fields.FoodType = text
		conv.State = domain.StateAwaitingLocation
		return domain.TextReply(PromptLocation)

	case domain.StateAwaitingLocation:
		conv.Fields.Location = text
		result := domain.NotFound
		if e.lookup != nil {
			result = e.lookup.Search(ctx, conv.Fields.FoodType, conv.Fields.Location)
		}
		conv.State = domain.StateCompleted
		return reply.FormatLookup(result)

	default:
		conv.State = domain.StateUnrecognized
		return domain.TextReply(ReplyNotUnderstood)
	}
}

func (e *Engine) destroy(conv *domain.Conversation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if current, ok := e.active[conv.Key]; ok && current == conv {
		delete(e.active, conv.Key)
		e.metrics.ConversationEnded(conv.State.String())
		e.logger.Info("Conversation ended",
			"conversation_id", conv.ID,
			"state", conv.State.String(),
			"duration", e.now().Sub(conv.StartedAt),
		)
	}
}
