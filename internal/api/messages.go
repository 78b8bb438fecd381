package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/identity"
)

const (
	maxMessageBody   = 16 << 10
	apiChannelPrefix = "api:"
)

// MessageRequest is the body of POST /api/messages.
// The sender is always the caller's anonymous identity, so the body carries
// no user or channel fields.
type MessageRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// MessageResponse is the reply to POST /api/messages.
type MessageResponse struct {
	Handled bool                  `json:"handled"`
	Reply   *domain.OutboundReply `json:"reply,omitempty"`
}

// MessageHandler lets HTTP clients talk to the bot without a chat transport.
type MessageHandler struct {
	router MessageRouter
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(router MessageRouter) *MessageHandler {
	return &MessageHandler{router: router}
}

// RegisterRoutes registers the message routes.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/messages", h.PostMessage)
}

// PostMessage routes one message and returns the bot's reply.
func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxMessageBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			Error(w, http.StatusBadRequest, "empty request body")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "identity required")
		return
	}
	// API conversations live in their own channel namespace so they never
	// share a key with a Slack or web chat conversation.
	msg := domain.InboundMessage{
		Text:      req.Text,
		UserID:    userID,
		ChannelID: apiChannelPrefix + identity.SessionIDFromContext(r.Context()),
		Context:   domain.ParseMessageContext(req.Context),
	}

	out, ok := h.router.Route(r.Context(), msg)
	slog.Debug("API message routed", "user_id", msg.UserID, "channel_id", msg.ChannelID, "handled", ok)
	if !ok {
		JSON(w, http.StatusOK, MessageResponse{Handled: false})
		return
	}
	JSON(w, http.StatusOK, MessageResponse{Handled: true, Reply: &out})
}
