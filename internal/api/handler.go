// Package api provides HTTP handlers for the hungrybot API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ashureev/hungrybot/internal/domain"
)

// MessageRouter routes a chat message to the bot.
type MessageRouter interface {
	Route(ctx context.Context, msg domain.InboundMessage) (domain.OutboundReply, bool)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
