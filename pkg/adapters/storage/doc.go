// Package storage provides activity store implementations.
//
// Implementations:
//   - memory: ordered in-process table guarded by a mutex (default)
//   - redis: JSON documents per activity with optimistic transactions, shared
//     between replicas
package storage
