// Package websocket streams roster events of a single activity to browser
// clients. Each connection holds its own event bus subscription for as long
// as the client stays connected.
package websocket
