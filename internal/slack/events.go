// Package slack connects the router to a Slack workspace over RTM.
package slack

import (
	"strings"

	"github.com/slack-go/slack"

	"github.com/ashureev/hungrybot/internal/domain"
)

// ToInbound converts a Slack message event into an InboundMessage.
// It returns false for events the bot must not answer: its own messages,
// other bots, subtyped messages (edits, joins, ...) and empty sender.
func ToInbound(ev *slack.MessageEvent, botID string) (domain.InboundMessage, bool) {
	if ev == nil || ev.SubType != "" || ev.BotID != "" || ev.User == "" {
		return domain.InboundMessage{}, false
	}
	if botID != "" && ev.User == botID {
		return domain.InboundMessage{}, false
	}

	text, ctx := classify(ev.Channel, ev.Text, botID)
	return domain.InboundMessage{
		Text:      text,
		UserID:    ev.User,
		ChannelID: ev.Channel,
		Context:   ctx,
	}, true
}

// classify derives the message context. A leading mention is stripped from
// the text so "<@BOT>: hi" is matched as "hi".
func classify(channel, text, botID string) (string, domain.MessageContext) {
	if strings.HasPrefix(channel, "D") {
		return stripMention(text, botID), domain.ContextDirectMessage
	}
	if botID == "" {
		return text, domain.ContextAmbient
	}

	mention := "<@" + botID + ">"
	switch {
	case strings.HasPrefix(strings.TrimSpace(text), mention):
		return stripMention(text, botID), domain.ContextDirectMention
	case strings.Contains(text, mention):
		return text, domain.ContextMention
	default:
		return text, domain.ContextAmbient
	}
}

func stripMention(text, botID string) string {
	trimmed := strings.TrimSpace(text)
	if botID == "" {
		return trimmed
	}
	rest, ok := strings.CutPrefix(trimmed, "<@"+botID+">")
	if !ok {
		return trimmed
	}
	rest = strings.TrimLeft(rest, " :,")
	return strings.TrimSpace(rest)
}

// MessageOptions renders a reply as chat.postMessage options.
func MessageOptions(out domain.OutboundReply) []slack.MsgOption {
	opts := []slack.MsgOption{slack.MsgOptionText(out.Text, false)}
	if out.Attachment != nil {
		opts = append(opts, slack.MsgOptionAttachments(slack.Attachment{
			Title:     out.Attachment.Title,
			TitleLink: out.Attachment.TitleLink,
			Text:      out.Attachment.Text,
			ImageURL:  out.Attachment.ImageURL,
		}))
	}
	return opts
}
