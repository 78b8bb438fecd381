// Package lookup wraps the business search service behind a failure-free adapter.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/metrics"
)

// ErrNoResults is returned by searchers that got a valid but empty answer.
var ErrNoResults = errors.New("no businesses found")

// Searcher queries a business search backend.
type Searcher interface {
	SearchBusinesses(ctx context.Context, term, location string) ([]domain.Business, error)
}

// Adapter collapses every search failure into domain.NotFound.
type Adapter struct {
	searcher Searcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAdapter creates an adapter over s. logger and m may be nil.
func NewAdapter(s Searcher, logger *slog.Logger, m *metrics.Metrics) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		searcher: s,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Search runs a single search attempt and returns the top business.
func (a *Adapter) Search(ctx context.Context, term, location string) domain.LookupResult {
	start := a.now()
	result := a.search(ctx, term, location)
	a.metrics.ObserveLookup(result.Found, a.now().Sub(start))
	return result
}

func (a *Adapter) search(ctx context.Context, term, location string) domain.LookupResult {
	if a.searcher == nil {
		a.logger.Warn("Business search not configured", "term", term, "location", location)
		return domain.NotFound
	}

	businesses, err := a.searcher.SearchBusinesses(ctx, term, location)
	if err == nil && len(businesses) == 0 {
		err = ErrNoResults
	}
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			a.logger.Info("Business search returned no results", "term", term, "location", location)
		} else {
			a.logger.Warn("Business search failed", "term", term, "location", location, "error", err)
		}
		return domain.NotFound
	}

	top := businesses[0]
	a.logger.Info("Business search succeeded",
		"term", term,
		"location", location,
		"business", top.Name,
		"result_count", len(businesses),
	)
	return domain.Found(top)
}
