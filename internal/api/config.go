package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/hungrybot/internal/identity"
)

// ClientConfig is what the browser client needs to know.
type ClientConfig struct {
	WebchatEnabled bool   `json:"webchat_enabled"`
	SlackEnabled   bool   `json:"slack_enabled"`
	WebSocketPath  string `json:"ws_path"`
	SessionHeader  string `json:"session_header"`
	Username       string `json:"username,omitempty"`
}

// ConfigHandler serves GET /api/config.
type ConfigHandler struct {
	base ClientConfig
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(webchatEnabled, slackEnabled bool) *ConfigHandler {
	return &ConfigHandler{base: ClientConfig{
		WebchatEnabled: webchatEnabled,
		SlackEnabled:   slackEnabled,
		WebSocketPath:  "/ws/chat",
		SessionHeader:  identity.SessionHeaderName,
	}}
}

// GetConfig returns the client configuration for the caller.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.base
	cfg.Username = identity.UsernameFromContext(r.Context())
	JSON(w, http.StatusOK, cfg)
}

// RegisterRoutes registers the config route.
func (h *ConfigHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/config", h.GetConfig)
}
