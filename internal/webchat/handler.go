package webchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/identity"
)

const writeTimeout = 10 * time.Second

// Frame types.
const (
	FrameMessage = "message"
	FramePing    = "ping"
	FrameReply   = "reply"
	FramePong    = "pong"
	FrameError   = "error"
)

// MessageRouter handles one chat message.
type MessageRouter interface {
	Route(ctx context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool)
}

type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type serverFrame struct {
	Type       string             `json:"type"`
	Text       string             `json:"text,omitempty"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Handler upgrades requests to a chat socket.
// Requests must pass through identity.Middleware first.
type Handler struct {
	router        MessageRouter
	sessions      *Sessions
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a chat socket handler.
func NewHandler(router MessageRouter, sessions *Sessions, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		router:        router,
		sessions:      sessions,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ChannelID is the conversation channel for a browser tab.
func ChannelID(sessionID string) string {
	return "webchat:" + sessionID
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, `{"error":"missing identity"}`, http.StatusUnauthorized)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, `{"error":"origin not allowed"}`, http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sessions.Register(userID, sessionID, ws)
	defer h.sessions.Unregister(userID, sessionID, ws)

	h.readLoop(r.Context(), ws, userID, ChannelID(sessionID))
	slog.Info("Chat session ended", "user_id", userID, "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// readLoop handles frames one at a time, so a tab's messages stay ordered.
func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, userID, channelID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.write(ctx, ws, serverFrame{Type: FrameError, Error: "invalid frame"})
			continue
		}

		switch frame.Type {
		case FramePing:
			h.write(ctx, ws, serverFrame{Type: FramePong})
		case FrameMessage:
			out, ok := h.router.Route(ctx, domain.InboundMessage{
				Text:      frame.Content,
				UserID:    userID,
				ChannelID: channelID,
				Context:   domain.ContextDirectMessage,
			})
			if ok {
				h.write(ctx, ws, serverFrame{Type: FrameReply, Text: out.Text, Attachment: out.Attachment})
			}
		default:
			h.write(ctx, ws, serverFrame{Type: FrameError, Error: "unknown frame type"})
		}
	}
}

func (h *Handler) write(ctx context.Context, ws *websocket.Conn, frame serverFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to encode frame", "error", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := ws.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
	}
}
