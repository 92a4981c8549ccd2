// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Listing activities with their rosters
//   - Signing a participant up and removing a participant
//   - Streaming roster events over WebSocket
//   - Health checks and Prometheus metrics
//   - The static front end under /static
package http
