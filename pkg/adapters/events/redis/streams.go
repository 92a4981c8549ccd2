package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

// StreamsEventBus implements ports.EventBus using Redis Streams
type StreamsEventBus struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	maxLen int64
	block  time.Duration
}

// NewStreamsEventBus creates a new Redis Streams event bus. Streams are
// trimmed to roughly maxLen entries.
func NewStreamsEventBus(client *redis.Client, prefix string, maxLen int64, logger *zap.Logger) *StreamsEventBus {
	return &StreamsEventBus{
		client: client,
		logger: logger,
		prefix: prefix,
		maxLen: maxLen,
		block:  time.Second,
	}
}

// Publish appends an event to the topic stream
func (e *StreamsEventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	streamKey := e.streamKey(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: e.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := e.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("stream", streamKey))

	return nil
}

// Subscribe tails the topic stream from its current end until ctx is cancelled.
// The starting position is resolved before returning, so events published
// after Subscribe returns are never missed.
func (e *StreamsEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	streamKey := e.streamKey(topic)

	lastID := "0-0"
	latest, err := e.client.XRevRangeN(ctx, streamKey, "+", "-", 1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to resolve stream position: %w", err)
	}
	if len(latest) > 0 {
		lastID = latest[0].ID
	}

	e.logger.Debug("subscribed to event stream",
		zap.String("stream", streamKey),
		zap.String("from", lastID))

	go e.readStream(ctx, streamKey, lastID, handler)

	return nil
}

// readStream reads events from a stream
func (e *StreamsEventBus) readStream(ctx context.Context, streamKey, lastID string, handler ports.EventHandler) {
	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := e.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{streamKey, lastID},
			Count:   10,
			Block:   e.block,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			e.logger.Error("failed to read from stream",
				zap.String("stream", streamKey),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				e.processMessage(ctx, streamKey, message, handler)
			}
		}
	}
}

// processMessage decodes a stream entry and hands it to the handler
func (e *StreamsEventBus) processMessage(ctx context.Context, streamKey string, message redis.XMessage, handler ports.EventHandler) {
	data, ok := message.Values["data"].(string)
	if !ok {
		e.logger.Error("invalid message format",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID))
		return
	}

	var event domain.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		e.logger.Error("failed to unmarshal event",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Warn("handler error",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
	}
}

// Close is a no-op; the Redis client is owned and closed by the caller
func (e *StreamsEventBus) Close() error {
	return nil
}

// streamKey returns the Redis stream key for a topic
func (e *StreamsEventBus) streamKey(topic string) string {
	return fmt.Sprintf("%s:events:%s", e.prefix, topic)
}
