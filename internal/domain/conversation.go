package domain

import (
	"time"
)

// ConversationKey identifies at most one active conversation.
type ConversationKey struct {
	UserID    string
	ChannelID string
}

// String returns the key as "user:channel", the form used in logs.
func (k ConversationKey) String() string {
	return k.UserID + ":" + k.ChannelID
}

// ConversationState is a step of the food recommendation dialogue.
type ConversationState int

const (
	StateAwaitingConfirmation ConversationState = iota
	StateAwaitingFoodType
	StateAwaitingLocation
	StateCompleted
	StateCancelled
	StateUnrecognized
)

var stateNames = map[ConversationState]string{
	StateAwaitingConfirmation: "awaiting_confirmation",
	StateAwaitingFoodType:     "awaiting_food_type",
	StateAwaitingLocation:     "awaiting_location",
	StateCompleted:            "completed",
	StateCancelled:            "cancelled",
	StateUnrecognized:         "unrecognized",
}

func (s ConversationState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether reaching the state ends the conversation.
func (s ConversationState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateUnrecognized
}

// CollectedFields holds the answers gathered so far.
// Fields are only ever set, never cleared.
type CollectedFields struct {
	FoodType string
	Location string
}

// Conversation is one user's in-progress dialogue in one channel.
type Conversation struct {
	ID        string
	Key       ConversationKey
	State     ConversationState
	Fields    CollectedFields
	StartedAt time.Time
	UpdatedAt time.Time
}
