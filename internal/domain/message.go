// Package domain contains the core types shared by the hungrybot components.
package domain

// MessageContext is the addressing mode of an inbound message.
type MessageContext string

const (
	// ContextDirectMessage is a one-to-one message to the bot.
	ContextDirectMessage MessageContext = "direct_message"
	// ContextDirectMention is a channel message that starts with a mention of the bot.
	ContextDirectMention MessageContext = "direct_mention"
	// ContextMention is a channel message that mentions the bot anywhere else.
	ContextMention MessageContext = "mention"
	// ContextAmbient is a channel message that does not address the bot.
	ContextAmbient MessageContext = "ambient"
)

// ParseMessageContext maps a wire value onto a MessageContext.
// Unknown values are treated as direct messages.
func ParseMessageContext(s string) MessageContext {
	switch MessageContext(s) {
	case ContextDirectMention, ContextMention, ContextAmbient:
		return MessageContext(s)
	default:
		return ContextDirectMessage
	}
}

// Addressed reports whether the message was directed at the bot.
func (c MessageContext) Addressed() bool {
	return c == ContextDirectMessage || c == ContextDirectMention || c == ContextMention
}

// InboundMessage is a single message received from a chat transport.
type InboundMessage struct {
	Text      string         `json:"text"`
	UserID    string         `json:"user_id"`
	ChannelID string         `json:"channel_id"`
	Context   MessageContext `json:"context"`
}

// Key returns the conversation key the message belongs to.
func (m InboundMessage) Key() ConversationKey {
	return ConversationKey{UserID: m.UserID, ChannelID: m.ChannelID}
}

// Attachment is the structured part of a reply.
type Attachment struct {
	Title     string `json:"title"`
	TitleLink string `json:"title_link"`
	Text      string `json:"text"`
	ImageURL  string `json:"image_url"`
}

// OutboundReply is a single message the bot sends back.
type OutboundReply struct {
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// TextReply builds a reply without an attachment.
func TextReply(text string) OutboundReply {
	return OutboundReply{Text: text}
}
