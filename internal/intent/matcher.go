// Package intent matches inbound text against an ordered table of intents.
package intent

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ashureev/hungrybot/internal/domain"
)

// Intent names used by the default table.
const (
	Greeting = "greeting"
	Food     = "food"
	Help     = "help"
	Fallback = "fallback"
)

// ErrMissingCatchAll is returned when the last rule of a table does not match everything.
var ErrMissingCatchAll = errors.New("intent table must end with a catch-all rule")

// Intent is a named set of utterance patterns gated by message context.
type Intent struct {
	Name     string
	Patterns []*regexp.Regexp
	// Contexts lists the contexts the intent may fire in. Empty means any context.
	Contexts []domain.MessageContext
}

func (i Intent) allows(ctx domain.MessageContext) bool {
	if len(i.Contexts) == 0 {
		return true
	}
	for _, c := range i.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

func (i Intent) matches(text string) bool {
	for _, p := range i.Patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Matcher evaluates intents top to bottom; the first match wins.
type Matcher struct {
	intents []Intent
}

var addressed = []domain.MessageContext{
	domain.ContextDirectMessage,
	domain.ContextDirectMention,
	domain.ContextMention,
}

// DefaultIntents returns the bot's rule table in priority order.
func DefaultIntents() []Intent {
	return []Intent{
		{Name: Greeting, Patterns: Tokens("hello", "hi", "howdy"), Contexts: addressed},
		{Name: Food, Patterns: Tokens("hungry", "food", "restaurant"), Contexts: addressed},
		{Name: Help, Patterns: Tokens("help"), Contexts: addressed},
		{Name: Fallback, Patterns: []*regexp.Regexp{regexp.MustCompile(`^.*`)}},
	}
}

// NewMatcher validates the table and returns a Matcher over it.
func NewMatcher(intents []Intent) (*Matcher, error) {
	if len(intents) == 0 {
		return nil, ErrMissingCatchAll
	}
	for i, in := range intents {
		if in.Name == "" {
			return nil, fmt.Errorf("intent %d has no name", i)
		}
		if len(in.Patterns) == 0 {
			return nil, fmt.Errorf("intent %q has no patterns", in.Name)
		}
	}
	last := intents[len(intents)-1]
	if len(last.Contexts) != 0 || !last.matches("") {
		return nil, ErrMissingCatchAll
	}
	return &Matcher{intents: intents}, nil
}

// MustDefault returns a Matcher over DefaultIntents.
func MustDefault() *Matcher {
	m, err := NewMatcher(DefaultIntents())
	if err != nil {
		panic("intent: invalid default table: " + err.Error())
	}
	return m
}

// Match returns the first intent allowed in ctx whose patterns match text.
func (m *Matcher) Match(text string, ctx domain.MessageContext) (Intent, bool) {
	for _, in := range m.intents {
		if in.allows(ctx) && in.matches(text) {
			return in, true
		}
	}
	return Intent{}, false
}

// Intents returns a copy of the table in evaluation order.
func (m *Matcher) Intents() []Intent {
	out := make([]Intent, len(m.intents))
	copy(out, m.intents)
	return out
}

// Tokens compiles case-insensitive whole-word patterns for each word.
func Tokens(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}
