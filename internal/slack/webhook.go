package slack

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"
)

// OutgoingWebhookReply is the canned answer to outgoing webhooks.
const OutgoingWebhookReply = "yeah yeah"

// OutgoingWebhookHandler answers Slack outgoing webhooks.
// When token is non-empty, requests must carry the same token form value.
func OutgoingWebhookHandler(token string, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid form body"})
			return
		}
		if token != "" && subtle.ConstantTimeCompare([]byte(r.PostForm.Get("token")), []byte(token)) != 1 {
			logger.Warn("Outgoing webhook token mismatch", "remote", r.RemoteAddr)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
			return
		}

		logger.Debug("Outgoing webhook", "user_id", r.PostForm.Get("user_id"), "channel_id", r.PostForm.Get("channel_id"))
		if err := json.NewEncoder(w).Encode(slack.WebhookMessage{Text: OutgoingWebhookReply}); err != nil {
			logger.Error("Failed to encode webhook reply", "error", err)
		}
	}
}
