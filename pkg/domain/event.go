package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopicRosterEvents is the event bus topic carrying roster changes.
const TopicRosterEvents = "roster.events"

// EventType identifies a roster change.
type EventType string

const (
	EventTypeSignedUp EventType = "participant.signed_up"
	EventTypeRemoved  EventType = "participant.removed"
)

// Event describes a single roster change.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Activity  string    `json:"activity"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a roster event with a fresh ID and the current time.
func NewEvent(eventType EventType, activity, email string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Activity:  activity,
		Email:     email,
		Timestamp: time.Now().UTC(),
	}
}
