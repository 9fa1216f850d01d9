package models

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventPrivateDinner EventType = "private-dinner"
	EventCatering      EventType = "catering"
	EventCookingClass  EventType = "cooking-class"
	EventOther         EventType = "other"
)

// EventTypes lists the selectable event types in display order.
func EventTypes() []EventType {
	return []EventType{EventPrivateDinner, EventCatering, EventCookingClass, EventOther}
}

func (e EventType) Valid() bool {
	for _, known := range EventTypes() {
		if e == known {
			return true
		}
	}
	return false
}

// Label is the human-readable name used in the booking form.
func (e EventType) Label() string {
	switch e {
	case EventPrivateDinner:
		return "Private Dinner"
	case EventCatering:
		return "Catering"
	case EventCookingClass:
		return "Cooking Class"
	case EventOther:
		return "Other"
	default:
		return string(e)
	}
}

// ReservationRequest is the booking form. It is immutable once handed to the store.
type ReservationRequest struct {
	Name            string    `json:"name" firestore:"name"`
	Email           string    `json:"email" firestore:"email"`
	Phone           string    `json:"phone" firestore:"phone"`
	Date            string    `json:"date" firestore:"date"`
	Time            string    `json:"time" firestore:"time"`
	Guests          int       `json:"guests" firestore:"guests"`
	EventType       EventType `json:"eventType" firestore:"eventType"`
	DietaryNotes    string    `json:"dietaryNotes" firestore:"dietaryNotes"`
	SpecialRequests string    `json:"specialRequests" firestore:"specialRequests"`
}

// Validate checks the fields the booking form marks as required.
func (r ReservationRequest) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"phone", r.Phone},
		{"date", r.Date},
		{"time", r.Time},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if r.Guests < 1 {
		return fmt.Errorf("%w: guest count must be at least 1", ErrValidation)
	}
	if !r.EventType.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, r.EventType)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := time.Parse(TimeLayout, r.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return nil
}

// ReservationRecord is what gets appended to the reservations collection.
// The stored document's createdAt is a server timestamp; SubmittedAt is this
// process's clock when the append succeeded, used by the spreadsheet mirror.
type ReservationRecord struct {
	ID string `json:"id,omitempty"`
	ReservationRequest
	UserID      string    `json:"userId"`
	SubmittedAt time.Time `json:"submittedAt"`
}
