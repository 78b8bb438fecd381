package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/store"
)

// StartGuestSweeper periodically deletes web chat guests not seen within ttl.
// It returns immediately; the sweep goroutine stops when ctx is done.
func StartGuestSweeper(ctx context.Context, repo store.Repository, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		slog.Info("Guest sweeper disabled", "ttl", ttl, "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Guest sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepGuests(ctx, repo, ttl)
			case <-ctx.Done():
				slog.Info("Guest sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepGuests(ctx context.Context, repo store.Repository, ttl time.Duration) int64 {
	deleted, err := repo.DeleteStaleUsers(ctx, domain.UserSourceWebchat, ttl)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Guest sweep interrupted", "error", err)
			return 0
		}
		slog.Error("Guest sweep failed", "error", err)
		return 0
	}
	if deleted > 0 {
		slog.Info("Guest sweep removed stale guests", "count", deleted)
	}
	return deleted
}
