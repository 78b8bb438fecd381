// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/hungrybot/internal/domain"
)

// Repository persists the user directory.
type Repository interface {
	// GetUser returns the user with userID, or nil when there is none.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// DeleteStaleUsers removes entries of source not updated within maxAge.
	DeleteStaleUsers(ctx context.Context, source domain.UserSource, maxAge time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
