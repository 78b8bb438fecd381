// Package directory resolves chat user IDs to display names.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/store"
)

// ErrUnknownUser is returned when neither the store nor the remote knows the user.
var ErrUnknownUser = errors.New("unknown user")

// Remote fetches a user name from the chat platform.
type Remote interface {
	UserName(ctx context.Context, userID string) (string, error)
}

// Directory looks up names in the store first and falls back to the remote.
// Remote answers are written back to the store.
type Directory struct {
	repo   store.Repository
	remote Remote
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New creates a directory. remote may be nil, in which case only stored names resolve.
// Entries older than maxAge are refreshed from the remote; zero keeps them forever.
func New(repo store.Repository, remote Remote, maxAge time.Duration, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		repo:   repo,
		remote: remote,
		maxAge: maxAge,
		logger: logger,
		now:    time.Now,
	}
}

// LookupUserName returns the display name for userID.
func (d *Directory) LookupUserName(ctx context.Context, userID string) (string, error) {
	cached, err := d.repo.GetUser(ctx, userID)
	if err != nil {
		d.logger.Warn("User directory read failed", "user_id", userID, "error", err)
		cached = nil
	}
	if cached != nil && (cached.Source != domain.UserSourceSlack || !cached.Stale(d.maxAge, d.now())) {
		return cached.Username, nil
	}

	if d.remote == nil {
		if cached != nil {
			return cached.Username, nil
		}
		return "", ErrUnknownUser
	}

	name, err := d.remote.UserName(ctx, userID)
	name = strings.TrimSpace(name)
	if err != nil || name == "" {
		if cached != nil {
			d.logger.Debug("Serving stale user name", "user_id", userID, "error", err)
			return cached.Username, nil
		}
		if err == nil {
			err = ErrUnknownUser
		}
		return "", fmt.Errorf("lookup user %s: %w", userID, err)
	}

	now := d.now()
	user := &domain.User{
		UserID:    userID,
		Username:  name,
		Source:    domain.UserSourceSlack,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.repo.UpsertUser(ctx, user); err != nil {
		d.logger.Warn("User directory write failed", "user_id", userID, "error", err)
	}
	return name, nil
}
