package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/slack-go/slack"

	"github.com/ashureev/hungrybot/internal/domain"
)

// ErrInvalidAuth is returned by Run when Slack rejects the bot token.
var ErrInvalidAuth = errors.New("slack: invalid auth")

// MessageRouter handles an inbound message and reports whether to reply.
type MessageRouter interface {
	Route(ctx context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool)
}

// Poster delivers messages to a channel.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Bot reads RTM events and answers them through the router.
type Bot struct {
	events     <-chan slack.RTMEvent
	manage     func()
	disconnect func() error
	poster     Poster
	router     MessageRouter
	logger     *slog.Logger

	mu     sync.RWMutex
	botID  string
	queues *keyQueues
}

// NewBot creates an RTM bot for client. logger may be nil.
func NewBot(client *Client, router MessageRouter, logger *slog.Logger) *Bot {
	rtm := client.api.NewRTM()
	return newBot(rtm.IncomingEvents, rtm.ManageConnection, rtm.Disconnect, client.api, router, logger)
}

func newBot(events <-chan slack.RTMEvent, manage func(), disconnect func() error, poster Poster, router MessageRouter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		events:     events,
		manage:     manage,
		disconnect: disconnect,
		poster:     poster,
		router:     router,
		logger:     logger,
		queues:     newKeyQueues(),
	}
}

// Run processes events until ctx is cancelled or Slack rejects the token.
func (b *Bot) Run(ctx context.Context) error {
	if b.manage != nil {
		go b.manage()
	}
	defer func() {
		if b.disconnect != nil {
			if err := b.disconnect(); err != nil {
				b.logger.Debug("Slack disconnect failed", "error", err)
			}
		}
		b.queues.wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-b.events:
			if !ok {
				return nil
			}
			if err := b.handleEvent(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, ev slack.RTMEvent) error {
	switch data := ev.Data.(type) {
	case *slack.ConnectedEvent:
		if data.Info != nil && data.Info.User != nil {
			b.mu.Lock()
			b.botID = data.Info.User.ID
			b.mu.Unlock()
			b.logger.Info("Connected to Slack", "bot_id", data.Info.User.ID, "connections", data.ConnectionCount)
		}

	case *slack.MessageEvent:
		msg, ok := ToInbound(data, b.BotID())
		if !ok {
			return nil
		}
		b.queues.submit(msg.Key(), func() { b.respond(ctx, msg) })

	case *slack.RTMError:
		b.logger.Warn("Slack RTM error", "code", data.Code, "error", data.Msg)

	case *slack.InvalidAuthEvent:
		b.logger.Error("Slack rejected the bot token")
		return ErrInvalidAuth
	}
	return nil
}

func (b *Bot) respond(ctx context.Context, msg domain.InboundMessage) {
	out, ok := b.router.Route(ctx, msg)
	if !ok {
		return
	}
	if _, _, err := b.poster.PostMessageContext(ctx, msg.ChannelID, MessageOptions(out)...); err != nil {
		b.logger.Error("Failed to post reply",
			"user_id", msg.UserID,
			"channel_id", msg.ChannelID,
			"error", fmt.Errorf("post message: %w", err),
		)
	}
}

// BotID returns the bot's own user ID once connected.
func (b *Bot) BotID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.botID
}
