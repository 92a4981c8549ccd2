// Package events provides roster event bus implementations.
//
// Implementations:
//   - memory: in-process fan-out (default)
//   - redis: Redis Streams, every subscriber tails the stream independently
package events
