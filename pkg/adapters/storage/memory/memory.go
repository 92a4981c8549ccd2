package memory

import (
	"context"
	"sync"

	"github.com/aescanero/signup/pkg/domain"
)

// ActivityStore implements ports.ActivityStore with an in-process table.
// Mutation of the table is serialised by mu; callers only ever see copies.
type ActivityStore struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*domain.Activity
}

// NewActivityStore creates an empty in-memory activity store
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		byName: make(map[string]*domain.Activity),
	}
}

// Seed replaces the table with the given catalog
func (s *ActivityStore) Seed(ctx context.Context, activities []domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]string, 0, len(activities))
	s.byName = make(map[string]*domain.Activity, len(activities))
	for _, activity := range activities {
		if _, exists := s.byName[activity.Name]; !exists {
			s.order = append(s.order, activity.Name)
		}
		stored := activity.Clone()
		s.byName[activity.Name] = &stored
	}

	return nil
}

// List returns all activities in catalog order
func (s *ActivityStore) List(ctx context.Context) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make([]domain.Activity, 0, len(s.order))
	for _, name := range s.order {
		activities = append(activities, s.byName[name].Clone())
	}

	return activities, nil
}

// Get returns a copy of the named activity
func (s *ActivityStore) Get(ctx context.Context, name string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.byName[name]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}

	out := activity.Clone()
	return &out, nil
}

// Update applies fn to a working copy and stores it only if fn succeeds
func (s *ActivityStore) Update(ctx context.Context, name string, fn func(*domain.Activity) error) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.byName[name]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}

	working := activity.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.Name = name
	s.byName[name] = &working

	out := working.Clone()
	return &out, nil
}

// Ping always succeeds for the in-memory store
func (s *ActivityStore) Ping(ctx context.Context) error {
	return nil
}
