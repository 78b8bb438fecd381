// Package router is the single entry point for inbound chat messages.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/hungrybot/internal/conversation"
	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/intent"
	"github.com/ashureev/hungrybot/internal/metrics"
)

// Canned replies.
const (
	HelpText       = "Hi! If you say hi to me, I will say hi back to you. Otherwise, to get a restaurant recommendation, tell me you are hungry!"
	FallbackText   = "Sorry, I do not understand what you are saying."
	AnonymousHello = "Hello there!"
)

// routeConversation labels messages forwarded to an active conversation in metrics.
const routeConversation = "conversation"

// UserDirectory resolves a chat user's display name.
type UserDirectory interface {
	LookupUserName(ctx context.Context, userID string) (string, error)
}

// Router dispatches messages to the conversation engine or to canned replies.
type Router struct {
	matcher   *intent.Matcher
	engine    *conversation.Engine
	directory UserDirectory
	logger    *slog.Logger
	metrics   *metrics.Metrics
	locks     *keyedMutex
}

// New creates a router. directory, logger and m may be nil.
func New(matcher *intent.Matcher, engine *conversation.Engine, directory UserDirectory, logger *slog.Logger, m *metrics.Metrics) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		matcher:   matcher,
		engine:    engine,
		directory: directory,
		logger:    logger,
		metrics:   m,
		locks:     newKeyedMutex(),
	}
}

// Route handles one inbound message. It returns false when the message is ignored.
//
// Messages for the same (user, channel) key are processed one at a time in arrival order.
func (r *Router) Route(ctx context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool) {
	key := msg.Key()
	unlock := r.locks.Lock(key)
	defer unlock()

	if out, ok := r.engine.Handle(ctx, msg); ok {
		r.metrics.RouteMessage(routeConversation)
		return out, true
	}

	if !msg.Context.Addressed() {
		return domain.OutboundReply{}, false
	}

	matched, ok := r.matcher.Match(msg.Text, msg.Context)
	name := intent.Fallback
	if ok {
		name = matched.Name
	}
	r.metrics.RouteMessage(name)
	r.logger.Debug("Intent matched", "intent", name, "user_id", msg.UserID, "channel_id", msg.ChannelID, "context", string(msg.Context))

	switch name {
	case intent.Greeting:
		return r.greet(ctx, msg.UserID), true
	case intent.Food:
		out, err := r.engine.Start(key)
		if errors.Is(err, conversation.ErrConversationActive) {
			// Only reachable if a conversation appeared after Handle; forward to it.
			out, _ = r.engine.Handle(ctx, msg)
		}
		return out, true
	case intent.Help:
		return domain.TextReply(HelpText), true
	default:
		return domain.TextReply(FallbackText), true
	}
}

func (r *Router) greet(ctx context.Context, userID string) domain.OutboundReply {
	if r.directory == nil {
		return domain.TextReply(AnonymousHello)
	}
	name, err := r.directory.LookupUserName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		if err != nil {
			r.logger.Warn("User lookup failed", "user_id", userID, "error", err)
		}
		return domain.TextReply(AnonymousHello)
	}
	return domain.TextReply(fmt.Sprintf("Hello, %s!", name))
}
