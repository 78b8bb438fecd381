package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/hungrybot/internal/domain"
)

func TestSweepGuests(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	require.NoError(t, repo.UpsertUser(ctx, &domain.User{
		UserID: "anon_old", Username: "guest-old", Source: domain.UserSourceWebchat, CreatedAt: old, UpdatedAt: old,
	}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{
		UserID: "U1", Username: "ada", Source: domain.UserSourceSlack, CreatedAt: old, UpdatedAt: old,
	}))

	assert.EqualValues(t, 1, sweepGuests(ctx, repo, 24*time.Hour))

	slackUser, err := repo.GetUser(ctx, "U1")
	require.NoError(t, err)
	assert.NotNil(t, slackUser)
}

func TestStartGuestSweeperRuns(t *testing.T) {
	repo := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{
		UserID: "anon_old", Username: "guest-old", Source: domain.UserSourceWebchat, CreatedAt: old, UpdatedAt: old,
	}))

	StartGuestSweeper(ctx, repo, time.Hour, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		u, err := repo.GetUser(context.Background(), "anon_old")
		return err == nil && u == nil
	}, 2*time.Second, 20*time.Millisecond)
}
