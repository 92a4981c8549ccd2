// Package directory implements the activity directory: listing activities,
// signing participants up and removing them.
//
// The directory service coordinates:
//   - Roster mutation through the activity store (one atomic update per call)
//   - Publishing roster events to the event bus
//   - Recording operation and roster metrics
//
// The catalog helpers provide the default activity list, load an alternative
// list from YAML and validate a catalog before it is seeded.
package directory
