package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
)

// maxTxRetries bounds optimistic transaction retries when a watched key changes
const maxTxRetries = 10

// ActivityStore implements ports.ActivityStore using Redis
type ActivityStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewActivityStore creates a new Redis activity store. Keys are namespaced by prefix.
func NewActivityStore(client *redis.Client, prefix string, logger *zap.Logger) *ActivityStore {
	return &ActivityStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Seed writes catalog entries that do not exist yet. Rosters already held in
// Redis by another replica are left untouched.
func (s *ActivityStore) Seed(ctx context.Context, activities []domain.Activity) error {
	pipe := s.client.TxPipeline()
	for i, activity := range activities {
		data, err := json.Marshal(activity.Clone())
		if err != nil {
			return fmt.Errorf("failed to marshal activity %q: %w", activity.Name, err)
		}
		pipe.SetNX(ctx, s.activityKey(activity.Name), data, 0)
		pipe.ZAddNX(ctx, s.orderKey(), redis.Z{Score: float64(i), Member: activity.Name})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed activities: %w", err)
	}

	s.logger.Info("activity catalog seeded",
		zap.Int("activities", len(activities)),
		zap.String("prefix", s.prefix))

	return nil
}

// List returns all activities in catalog order
func (s *ActivityStore) List(ctx context.Context) ([]domain.Activity, error) {
	names, err := s.client.ZRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list activity names: %w", err)
	}
	if len(names) == 0 {
		return []domain.Activity{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.activityKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	activities := make([]domain.Activity, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			s.logger.Warn("activity listed without a document", zap.String("activity", names[i]))
			continue
		}
		activity, err := decodeActivity(names[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}

	return activities, nil
}

// Get retrieves a single activity
func (s *ActivityStore) Get(ctx context.Context, name string) (*domain.Activity, error) {
	data, err := s.client.Get(ctx, s.activityKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return decodeActivity(name, data)
}

// Update runs fn inside a WATCH/MULTI transaction on the activity key,
// retrying when a concurrent writer changed the key first.
func (s *ActivityStore) Update(ctx context.Context, name string, fn func(*domain.Activity) error) (*domain.Activity, error) {
	key := s.activityKey(name)

	var updated *domain.Activity
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrActivityNotFound
			}
			return fmt.Errorf("failed to get activity: %w", err)
		}

		activity, err := decodeActivity(name, data)
		if err != nil {
			return err
		}
		if err := fn(activity); err != nil {
			return err
		}

		encoded, err := json.Marshal(activity.Clone())
		if err != nil {
			return fmt.Errorf("failed to marshal activity: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = activity
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		s.logger.Debug("activity update conflicted, retrying",
			zap.String("activity", name),
			zap.Int("attempt", attempt+1))
	}

	return nil, fmt.Errorf("failed to update activity %q: too many concurrent writers", name)
}

// Ping checks the Redis connection
func (s *ActivityStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func decodeActivity(name string, data []byte) (*domain.Activity, error) {
	var activity domain.Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity %q: %w", name, err)
	}
	activity.Name = name
	if activity.Participants == nil {
		activity.Participants = []string{}
	}
	return &activity, nil
}

// activityKey returns the Redis key holding an activity document
func (s *ActivityStore) activityKey(name string) string {
	return fmt.Sprintf("%s:activity:%s", s.prefix, name)
}

// orderKey returns the sorted set keeping catalog order
func (s *ActivityStore) orderKey() string {
	return fmt.Sprintf("%s:activities", s.prefix)
}
