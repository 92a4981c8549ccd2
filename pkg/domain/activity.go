package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
)

var (
	// ErrActivityNotFound is returned when no activity carries the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrParticipantNotFound is returned when removing an email that is not on the roster.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrAlreadySignedUp is returned when the email is already on the roster.
	ErrAlreadySignedUp = errors.New("participant already signed up")
	// ErrActivityFull is returned when capacity is enforced and the roster is full.
	ErrActivityFull = errors.New("activity is full")
)

// Activity is a named event with a schedule, a capacity and a participant roster.
type Activity struct {
	Name            string   `json:"-" yaml:"-"`
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants"`
}

// Clone returns a deep copy so callers never share a roster slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

// HasParticipant reports whether email is on the roster.
func (a *Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// IsFull reports whether the roster has reached capacity.
func (a *Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// SpotsLeft is the remaining capacity, never negative.
func (a *Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// Enroll appends email to the roster. When enforceCapacity is set a full
// roster rejects the email with ErrActivityFull.
func (a *Activity) Enroll(email string, enforceCapacity bool) error {
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if enforceCapacity && a.IsFull() {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// Withdraw removes email from the roster, keeping the order of the others.
func (a *Activity) Withdraw(email string) error {
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return ErrParticipantNotFound
	}
	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	return nil
}

// Directory is an ordered list of activities. It encodes as a JSON object
// keyed by activity name, preserving catalog order.
type Directory []Activity

// MarshalJSON implements json.Marshaler.
func (d Directory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, activity := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(activity.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(activity.Clone())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
