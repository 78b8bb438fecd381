package intent

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/hungrybot/internal/domain"
)

func TestMatchGreetingInAddressedContexts(t *testing.T) {
	m := MustDefault()
	for _, text := range []string{"hello", "hi", "howdy", "HI there", "well, Hello!"} {
		for _, ctx := range addressed {
			got, ok := m.Match(text, ctx)
			require.True(t, ok, "text=%q ctx=%s", text, ctx)
			assert.Equal(t, Greeting, got.Name, "text=%q ctx=%s", text, ctx)
		}
	}
}

func TestMatchFood(t *testing.T) {
	m := MustDefault()
	for _, text := range []string{"hungry", "I'm so HUNGRY", "food?", "any restaurant nearby"} {
		got, ok := m.Match(text, domain.ContextDirectMessage)
		require.True(t, ok)
		assert.Equal(t, Food, got.Name, text)
	}
}

func TestMatchIsWholeWord(t *testing.T) {
	m := MustDefault()

	got, ok := m.Match("this is shipping", domain.ContextDirectMessage)
	require.True(t, ok)
	assert.Equal(t, Fallback, got.Name)

	got, _ = m.Match("seafood", domain.ContextMention)
	assert.Equal(t, Fallback, got.Name)
}

func TestMatchPriorityOrder(t *testing.T) {
	m := MustDefault()

	got, _ := m.Match("hi, I am hungry", domain.ContextDirectMessage)
	assert.Equal(t, Greeting, got.Name)

	got, _ = m.Match("help me find food", domain.ContextDirectMessage)
	assert.Equal(t, Food, got.Name)

	got, _ = m.Match("help", domain.ContextDirectMention)
	assert.Equal(t, Help, got.Name)
}

func TestMatchAmbientOnlyHitsCatchAll(t *testing.T) {
	m := MustDefault()
	got, ok := m.Match("hello hungry help", domain.ContextAmbient)
	require.True(t, ok)
	assert.Equal(t, Fallback, got.Name)
}

func TestCatchAllIsTotal(t *testing.T) {
	m := MustDefault()
	for _, text := range []string{"", "   ", "qwerty", "¿qué?", "line one\nline two"} {
		got, ok := m.Match(text, domain.ContextDirectMessage)
		require.True(t, ok, "%q", text)
		assert.Equal(t, Fallback, got.Name, "%q", text)
	}
}

func TestNewMatcherRequiresTrailingCatchAll(t *testing.T) {
	_, err := NewMatcher(nil)
	assert.ErrorIs(t, err, ErrMissingCatchAll)

	_, err = NewMatcher([]Intent{{Name: Greeting, Patterns: Tokens("hi")}})
	assert.ErrorIs(t, err, ErrMissingCatchAll)

	scoped := Intent{
		Name:     Fallback,
		Patterns: []*regexp.Regexp{regexp.MustCompile(`^.*`)},
		Contexts: []domain.MessageContext{domain.ContextDirectMessage},
	}
	_, err = NewMatcher([]Intent{scoped})
	assert.ErrorIs(t, err, ErrMissingCatchAll)

	_, err = NewMatcher([]Intent{{Name: "", Patterns: Tokens("x")}})
	assert.Error(t, err)

	_, err = NewMatcher([]Intent{{Name: "empty"}})
	assert.Error(t, err)
}

func TestIntentsReturnsCopy(t *testing.T) {
	m := MustDefault()
	list := m.Intents()
	list[0].Name = "changed"
	assert.Equal(t, Greeting, m.Intents()[0].Name)
	assert.Equal(t, Fallback, list[len(list)-1].Name)
}
