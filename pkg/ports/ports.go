// Package ports declares the interfaces the sign-up service depends on.
// Adapters under pkg/adapters implement them.
package ports

import (
	"context"

	"github.com/aescanero/signup/pkg/domain"
)

// ActivityStore owns the activity table.
type ActivityStore interface {
	// Seed loads the catalog at startup.
	Seed(ctx context.Context, activities []domain.Activity) error
	// List returns every activity in catalog order.
	List(ctx context.Context) ([]domain.Activity, error)
	// Get returns a copy of one activity or domain.ErrActivityNotFound.
	Get(ctx context.Context, name string) (*domain.Activity, error)
	// Update applies fn to one activity atomically and returns the stored
	// result. An error from fn aborts the update and is returned unchanged.
	Update(ctx context.Context, name string, fn func(*domain.Activity) error) (*domain.Activity, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// EventHandler processes a single roster event.
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus fans roster events out to subscribers.
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	// Subscribe registers handler until ctx is cancelled.
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// MetricsCollector records service metrics.
type MetricsCollector interface {
	RecordOperation(operation, result string)
	SetRoster(activity string, participants, capacity int)
	RecordEventPublished(topic string, ok bool)
	SetStoreHealthy(healthy bool)
}
