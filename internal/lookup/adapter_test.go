package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/hungrybot/internal/domain"
)

type stubSearcher struct {
	businesses []domain.Business
	err        error
	calls      int
}

func (s *stubSearcher) SearchBusinesses(_ context.Context, _, _ string) ([]domain.Business, error) {
	s.calls++
	return s.businesses, s.err
}

func TestAdapterReturnsFirstBusiness(t *testing.T) {
	s := &stubSearcher{businesses: []domain.Business{
		{Name: "First", Rating: 4},
		{Name: "Second", Rating: 5},
	}}
	a := NewAdapter(s, nil, nil)

	got := a.Search(context.Background(), "pizza", "here")
	assert.True(t, got.Found)
	assert.Equal(t, "First", got.Business.Name)
	assert.Equal(t, 1, s.calls)
}

func TestAdapterCollapsesFailures(t *testing.T) {
	tests := map[string]*stubSearcher{
		"error":       {err: errors.New("connection refused")},
		"wrapped":     {err: ErrUnexpectedStatus},
		"empty":       {businesses: []domain.Business{}},
		"nil":         {},
		"no results":  {err: ErrNoResults},
		"malformed":   {err: ErrMalformedBody},
		"missing key": {err: ErrMissingAPIKey},
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			got := NewAdapter(s, nil, nil).Search(context.Background(), "pizza", "here")
			assert.Equal(t, domain.NotFound, got)
			assert.Equal(t, 1, s.calls, "exactly one attempt")
		})
	}
}

func TestAdapterWithoutSearcher(t *testing.T) {
	got := NewAdapter(nil, nil, nil).Search(context.Background(), "pizza", "here")
	assert.False(t, got.Found)
}
