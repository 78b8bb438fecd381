package slack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/hungrybot/internal/domain"
)

type recordingRouter struct {
	mu   sync.Mutex
	seen []domain.InboundMessage
}

func (r *recordingRouter) Route(_ context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, msg)
	if msg.Context == domain.ContextAmbient {
		return domain.OutboundReply{}, false
	}
	return domain.TextReply("echo: " + msg.Text), true
}

func (r *recordingRouter) messages() []domain.InboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.InboundMessage(nil), r.seen...)
}

type recordingPoster struct {
	mu       sync.Mutex
	channels []string
}

func (p *recordingPoster) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channelID)
	return channelID, "1700000000.000100", nil
}

func (p *recordingPoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

func connected(botID string) slack.RTMEvent {
	return slack.RTMEvent{Type: "connected", Data: &slack.ConnectedEvent{
		Info: &slack.Info{User: &slack.UserDetails{ID: botID}},
	}}
}

func message(channel, user, text string) slack.RTMEvent {
	return slack.RTMEvent{Type: "message", Data: messageEvent(channel, user, text)}
}

func TestBotRoutesAndPosts(t *testing.T) {
	events := make(chan slack.RTMEvent, 8)
	router := &recordingRouter{}
	poster := &recordingPoster{}
	bot := newBot(events, nil, nil, poster, router, nil)

	events <- connected("UBOT")
	events <- message("D1", "U1", "hungry")
	events <- message("C1", "U1", "<@UBOT> hi")
	events <- message("C1", "U2", "chatter")
	events <- message("C1", "UBOT", "my own reply")
	close(events)

	require.NoError(t, bot.Run(context.Background()))

	assert.Equal(t, "UBOT", bot.BotID())
	assert.Len(t, router.messages(), 3)
	assert.Equal(t, 2, poster.count(), "ambient message gets no reply")
}

func TestBotStopsOnInvalidAuth(t *testing.T) {
	events := make(chan slack.RTMEvent, 1)
	events <- slack.RTMEvent{Type: "invalid_auth", Data: &slack.InvalidAuthEvent{}}

	disconnected := false
	bot := newBot(events, nil, func() error { disconnected = true; return nil }, &recordingPoster{}, &recordingRouter{}, nil)

	err := bot.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidAuth)
	assert.True(t, disconnected)
}

func TestBotStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bot := newBot(make(chan slack.RTMEvent), nil, nil, &recordingPoster{}, &recordingRouter{}, nil)

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestBotKeepsPerKeyOrder(t *testing.T) {
	events := make(chan slack.RTMEvent, 64)
	router := &recordingRouter{}
	bot := newBot(events, nil, nil, &recordingPoster{}, router, nil)

	want := []string{"hungry", "yes", "sushi", "downtown"}
	for _, text := range want {
		events <- message("D1", "U1", text)
	}
	close(events)
	require.NoError(t, bot.Run(context.Background()))

	var got []string
	for _, m := range router.messages() {
		got = append(got, m.Text)
	}
	assert.Equal(t, want, got)
}
