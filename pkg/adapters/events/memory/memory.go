package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

// subscriptionBuffer is the number of events queued per subscriber before
// new events are dropped.
const subscriptionBuffer = 1024

// subscription delivers events to one handler in publish order
type subscription struct {
	handler ports.EventHandler
	events  chan domain.Event
	done    chan struct{}
	once    sync.Once
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// EventBus implements ports.EventBus using in-process handlers
type EventBus struct {
	subscribers map[string]map[string]*subscription
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new in-memory event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[string]*subscription),
		logger:      logger,
	}
}

// Publish queues an event for every subscriber of a topic. Each subscriber
// receives events in the order they were published; the publisher never
// blocks on a slow handler.
func (e *EventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for id, sub := range e.subscribers[topic] {
		select {
		case sub.events <- event:
		default:
			e.logger.Warn("subscriber queue full, dropping event",
				zap.String("topic", topic),
				zap.String("subscription", id),
				zap.String("event_id", event.ID))
		}
	}

	return nil
}

// Subscribe registers handler on topic until ctx is cancelled or the bus is closed
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	id := uuid.New().String()
	sub := &subscription{
		handler: handler,
		events:  make(chan domain.Event, subscriptionBuffer),
		done:    make(chan struct{}),
	}

	e.mu.Lock()
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[string]*subscription)
	}
	e.subscribers[topic][id] = sub
	e.mu.Unlock()

	go e.deliver(ctx, topic, sub)

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		e.unsubscribe(topic, id)
	}()

	return nil
}

// deliver runs the handler for each queued event, one at a time
func (e *EventBus) deliver(ctx context.Context, topic string, sub *subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case event := <-sub.events:
			if err := sub.handler(ctx, event); err != nil {
				e.logger.Warn("event handler failed",
					zap.String("topic", topic),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
		}
	}
}

// Close stops and drops every subscription
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, subs := range e.subscribers {
		for _, sub := range subs {
			sub.stop()
		}
	}
	e.subscribers = make(map[string]map[string]*subscription)
	return nil
}

// subscriberCount is used by tests to observe unsubscription
func (e *EventBus) subscriberCount(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers[topic])
}

func (e *EventBus) unsubscribe(topic, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sub, ok := e.subscribers[topic][id]; ok {
		sub.stop()
	}
	delete(e.subscribers[topic], id)
	if len(e.subscribers[topic]) == 0 {
		delete(e.subscribers, topic)
	}
}
