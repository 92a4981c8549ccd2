package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/signup/pkg/domain"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan domain.Event, 1)
	second := make(chan domain.Event, 1)
	require.NoError(t, bus.Subscribe(ctx, domain.TopicRosterEvents, func(_ context.Context, e domain.Event) error {
		first <- e
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx, domain.TopicRosterEvents, func(_ context.Context, e domain.Event) error {
		second <- e
		return nil
	}))

	event := domain.NewEvent(domain.EventTypeSignedUp, "Chess Club", "a@mergington.edu")
	require.NoError(t, bus.Publish(context.Background(), domain.TopicRosterEvents, event))

	for _, ch := range []chan domain.Event{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, event.ID, got.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, bus.Subscribe(ctx, domain.TopicRosterEvents, func(context.Context, domain.Event) error { return nil }))
	assert.Equal(t, 1, bus.subscriberCount(domain.TopicRosterEvents))

	cancel()
	assert.Eventually(t, func() bool {
		return bus.subscriberCount(domain.TopicRosterEvents) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Publish(context.Background(), "nobody", domain.Event{ID: "x"}))
	require.NoError(t, bus.Close())
}

func TestSubscriberReceivesEventsInPublishOrder(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const total = 500
	received := make(chan domain.Event, total)
	require.NoError(t, bus.Subscribe(ctx, domain.TopicRosterEvents, func(_ context.Context, e domain.Event) error {
		received <- e
		return nil
	}))

	sent := make([]string, 0, total)
	for i := 0; i < total; i++ {
		eventType := domain.EventTypeSignedUp
		if i%2 == 1 {
			eventType = domain.EventTypeRemoved
		}
		event := domain.NewEvent(eventType, "Chess Club", fmt.Sprintf("student%d@mergington.edu", i/2))
		sent = append(sent, event.ID)
		require.NoError(t, bus.Publish(context.Background(), domain.TopicRosterEvents, event))
	}

	for i := 0; i < total; i++ {
		select {
		case got := <-received:
			require.Equal(t, sent[i], got.ID, "event %d delivered out of order", i)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d events delivered", i, total)
		}
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan domain.Event, 1)
	require.NoError(t, bus.Subscribe(ctx, domain.TopicRosterEvents, func(_ context.Context, e domain.Event) error {
		received <- e
		return nil
	}))

	require.NoError(t, bus.Close())
	assert.Equal(t, 0, bus.subscriberCount(domain.TopicRosterEvents))

	require.NoError(t, bus.Publish(context.Background(), domain.TopicRosterEvents, domain.Event{ID: "late"}))
	select {
	case e := <-received:
		t.Fatalf("unexpected delivery after close: %s", e.ID)
	case <-time.After(50 * time.Millisecond):
	}
}
