// Package domain holds the activity sign-up model shared by the application
// service, the storage and event adapters and the API layers.
//
// An activity is keyed by its name and carries a description, a schedule, a
// capacity and an ordered roster of participant emails. Rosters never hold the
// same email twice.
package domain
