package directory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

// Operation names used for metrics
const (
	OperationList   = "list"
	OperationSignup = "signup"
	OperationRemove = "remove"
)

// Service owns the activity table for the lifetime of the process
type Service struct {
	store   ports.ActivityStore
	events  ports.EventBus
	metrics ports.MetricsCollector
	logger  *zap.Logger

	enforceCapacity bool
}

// Options tunes sign-up rules
type Options struct {
	// EnforceCapacity rejects sign-ups once max_participants is reached.
	EnforceCapacity bool
}

// NewService creates a new directory service
func NewService(
	store ports.ActivityStore,
	events ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	opts Options,
) *Service {
	return &Service{
		store:           store,
		events:          events,
		metrics:         metrics,
		logger:          logger,
		enforceCapacity: opts.EnforceCapacity,
	}
}

// ListActivities returns the full table in catalog order
func (s *Service) ListActivities(ctx context.Context) (domain.Directory, error) {
	activities, err := s.store.List(ctx)
	if err != nil {
		s.metrics.RecordOperation(OperationList, resultOf(err))
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	s.metrics.RecordOperation(OperationList, resultOf(nil))
	return domain.Directory(activities), nil
}

// GetActivity returns a single activity
func (s *Service) GetActivity(ctx context.Context, name string) (*domain.Activity, error) {
	return s.store.Get(ctx, name)
}

// Signup adds email to the named activity's roster
func (s *Service) Signup(ctx context.Context, name, email string) (*domain.Activity, error) {
	activity, err := s.store.Update(ctx, name, func(a *domain.Activity) error {
		return a.Enroll(email, s.enforceCapacity)
	})
	s.metrics.RecordOperation(OperationSignup, resultOf(err))
	if err != nil {
		s.logger.Debug("signup rejected",
			zap.String("activity", name),
			zap.String("email", email),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("participant signed up",
		zap.String("activity", name),
		zap.String("email", email),
		zap.Int("participants", len(activity.Participants)),
		zap.Int("spots_left", activity.SpotsLeft()))

	s.afterMutation(ctx, activity, domain.NewEvent(domain.EventTypeSignedUp, name, email))
	return activity, nil
}

// RemoveParticipant removes email from the named activity's roster
func (s *Service) RemoveParticipant(ctx context.Context, name, email string) (*domain.Activity, error) {
	activity, err := s.store.Update(ctx, name, func(a *domain.Activity) error {
		return a.Withdraw(email)
	})
	s.metrics.RecordOperation(OperationRemove, resultOf(err))
	if err != nil {
		s.logger.Debug("removal rejected",
			zap.String("activity", name),
			zap.String("email", email),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("participant removed",
		zap.String("activity", name),
		zap.String("email", email),
		zap.Int("participants", len(activity.Participants)))

	s.afterMutation(ctx, activity, domain.NewEvent(domain.EventTypeRemoved, name, email))
	return activity, nil
}

// Ping reports whether the activity store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// afterMutation refreshes roster gauges and publishes the roster event.
// The roster change is already committed, so a publish failure is only logged.
func (s *Service) afterMutation(ctx context.Context, activity *domain.Activity, event domain.Event) {
	s.metrics.SetRoster(activity.Name, len(activity.Participants), activity.MaxParticipants)

	err := s.events.Publish(ctx, domain.TopicRosterEvents, event)
	s.metrics.RecordEventPublished(domain.TopicRosterEvents, err == nil)
	if err != nil {
		s.logger.Warn("failed to publish roster event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("activity", event.Activity),
			zap.Error(err))
	}
}

// resultOf maps an operation error to a metric label
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrParticipantNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadySignedUp):
		return "duplicate"
	case errors.Is(err, domain.ErrActivityFull):
		return "full"
	default:
		return "error"
	}
}
