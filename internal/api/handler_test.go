//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/hungrybot/internal/conversation"
	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/identity"
	"github.com/ashureev/hungrybot/internal/intent"
	"github.com/ashureev/hungrybot/internal/router"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad input"}`, w.Body.String())
}

type stubRouter struct {
	got domain.InboundMessage
}

func (s *stubRouter) Route(_ context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool) {
	s.got = msg
	if msg.Context == domain.ContextAmbient {
		return domain.OutboundReply{}, false
	}
	return domain.TextReply("Hello there!"), true
}

func newMux(h *MessageHandler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func post(ctx context.Context, t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostMessage(t *testing.T) {
	stub := &stubRouter{}
	mux := newMux(NewMessageHandler(stub))
	ctx := identity.WithIdentity(context.Background(), "anon_abc", "guest", "tab-1")

	rec := post(ctx, t, mux, `{"text":"hi","context":"mention"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"handled":true,"reply":{"text":"Hello there!"}}`, rec.Body.String())
	assert.Equal(t, domain.InboundMessage{Text: "hi", UserID: "anon_abc", ChannelID: "api:tab-1", Context: domain.ContextMention}, stub.got)
}

func TestPostMessageDefaultsToIdentity(t *testing.T) {
	stub := &stubRouter{}
	mux := newMux(NewMessageHandler(stub))
	ctx := identity.WithIdentity(context.Background(), "anon_abc", "guest", "tab-9")

	rec := post(ctx, t, mux, `{"text":"hungry"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anon_abc", stub.got.UserID)
	assert.Equal(t, "api:tab-9", stub.got.ChannelID)
	assert.Equal(t, domain.ContextDirectMessage, stub.got.Context)
}

func TestPostMessageIgnored(t *testing.T) {
	mux := newMux(NewMessageHandler(&stubRouter{}))
	ctx := identity.WithIdentity(context.Background(), "anon_abc", "guest", "tab-1")

	rec := post(ctx, t, mux, `{"text":"chatter","context":"ambient"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"handled":false}`, rec.Body.String())
}

func TestPostMessageBadRequests(t *testing.T) {
	mux := newMux(NewMessageHandler(&stubRouter{}))
	ctx := identity.WithIdentity(context.Background(), "anon_abc", "guest", "tab-1")

	for _, body := range []string{"", "{", `{"text":"hi","extra":1}`, `{"text":"hi","user_id":"U1"}`, `{"text":"hi","channel_id":"C1"}`} {
		rec := post(ctx, t, mux, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}

	rec := post(context.Background(), t, mux, `{"text":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fixedLookup struct{}

func (fixedLookup) Search(context.Context, string, string) domain.LookupResult {
	return domain.LookupResult{}
}

func TestPostMessageCannotReachChatConversations(t *testing.T) {
	engine := conversation.NewEngine(fixedLookup{}, nil, nil)
	rtr := router.New(intent.MustDefault(), engine, nil, nil, nil)
	slackKey := domain.ConversationKey{UserID: "U_SLACK", ChannelID: "C1"}

	_, ok := rtr.Route(context.Background(), domain.InboundMessage{
		Text: "I'm hungry", UserID: "U_SLACK", ChannelID: "C1", Context: domain.ContextMention,
	})
	require.True(t, ok)
	require.True(t, engine.Active(slackKey))

	mux := newMux(NewMessageHandler(rtr))
	ctx := identity.WithIdentity(context.Background(), "anon_attacker", "guest", "tab-1")

	rec := post(ctx, t, mux, `{"text":"no","user_id":"U_SLACK","channel_id":"C1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, engine.Active(slackKey))

	rec = post(ctx, t, mux, `{"text":"no"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, engine.Active(slackKey))
	assert.False(t, engine.Active(domain.ConversationKey{UserID: "anon_attacker", ChannelID: "api:tab-1"}))
}

func TestHealth(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	rec := httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"database": ok}, 0).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"api":"ok","database":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"database": ok, "redis": down}, 0).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"api":"ok","database":"ok","redis":"unreachable"}}`, rec.Body.String())
}

func TestGetConfig(t *testing.T) {
	h := NewConfigHandler(true, false)
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req = req.WithContext(identity.WithIdentity(req.Context(), "anon_abc", "guest-abc", "default"))
	rec := httptest.NewRecorder()
	h.GetConfig(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got ClientConfig
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.WebchatEnabled)
	assert.False(t, got.SlackEnabled)
	assert.Equal(t, "/ws/chat", got.WebSocketPath)
	assert.Equal(t, identity.SessionHeaderName, got.SessionHeader)
	assert.Equal(t, "guest-abc", got.Username)
}
