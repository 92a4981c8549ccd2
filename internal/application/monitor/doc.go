// Package monitor implements the roster monitor.
//
// The monitor periodically:
//   - Snapshots the activity directory and refreshes roster gauges
//   - Warns about activities that are full or over capacity
//   - Pings the activity store and reports the outcome to metrics and to
//     the gRPC health service
package monitor
