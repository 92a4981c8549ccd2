package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/signup/pkg/domain"
)

func newStore(t *testing.T) (*ActivityStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewActivityStore(client, "signup-test", zaptest.NewLogger(t))
	require.NoError(t, store.Seed(context.Background(), []domain.Activity{
		{Name: "Tennis Club", Description: "Tennis", Schedule: "Wed", MaxParticipants: 10, Participants: []string{"lucas@mergington.edu"}},
		{Name: "Chess Club", Description: "Chess", Schedule: "Fri", MaxParticipants: 12},
	}))
	return store, mr
}

func TestSeedAndList(t *testing.T) {
	store, _ := newStore(t)

	activities, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "Tennis Club", activities[0].Name)
	assert.Equal(t, []string{"lucas@mergington.edu"}, activities[0].Participants)
	assert.Equal(t, "Chess Club", activities[1].Name)
	assert.Equal(t, []string{}, activities[1].Participants)
}

func TestSeedKeepsExistingRosters(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "Chess Club", func(a *domain.Activity) error {
		return a.Enroll("kept@mergington.edu", false)
	})
	require.NoError(t, err)

	require.NoError(t, store.Seed(ctx, []domain.Activity{
		{Name: "Chess Club", Description: "Chess", Schedule: "Fri", MaxParticipants: 12},
	}))

	activity, err := store.Get(ctx, "Chess Club")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept@mergington.edu"}, activity.Participants)
}

func TestGetUnknown(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "Unknown")
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)

	_, err = store.Update(context.Background(), "Unknown", func(a *domain.Activity) error { return nil })
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestUpdatePropagatesMutationError(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "Tennis Club", func(a *domain.Activity) error {
		return a.Enroll("lucas@mergington.edu", false)
	})
	require.ErrorIs(t, err, domain.ErrAlreadySignedUp)

	activity, err := store.Get(ctx, "Tennis Club")
	require.NoError(t, err)
	assert.Equal(t, []string{"lucas@mergington.edu"}, activity.Participants)
}

func TestConcurrentUpdates(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, "Chess Club", func(a *domain.Activity) error {
				return a.Enroll(fmt.Sprintf("student%d@mergington.edu", i), false)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	activity, err := store.Get(ctx, "Chess Club")
	require.NoError(t, err)
	assert.Len(t, activity.Participants, 8)
}

func TestPing(t *testing.T) {
	store, mr := newStore(t)

	require.NoError(t, store.Ping(context.Background()))
	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
