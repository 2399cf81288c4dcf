// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event represents a scheduled activity with a capacity-bounded attendee list.
// StartTime and EndTime are always stored in UTC; Timezone is an IANA zone
// name used only when rendering the event for display.
type Event struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Timezone         string    `json:"timezone"`
	MaxCapacity      int       `json:"max_capacity"`
	CurrentAttendees int       `json:"current_attendees"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Remaining returns the number of open registration slots.
func (e *Event) Remaining() int {
	return e.MaxCapacity - e.CurrentAttendees
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxCapacity
}

// IsUpcoming reports whether the event starts strictly after the given instant.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartTime.After(now)
}

// LocalStartTime formats StartTime in the event's own timezone. It falls
// back to UTC when the stored zone name cannot be loaded.
func (e *Event) LocalStartTime() string {
	return inZone(e.StartTime, e.Timezone)
}

// LocalEndTime formats EndTime in the event's own timezone.
func (e *Event) LocalEndTime() string {
	return inZone(e.EndTime, e.Timezone)
}

func inZone(t time.Time, zone string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.RFC3339)
}

// Attendee represents a person registered for exactly one event. Email is
// unique within the owning event, not globally.
type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateEventRequest is the payload for creating a new event. StartTime and
// EndTime are wall-clock strings interpreted in Timezone.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	MaxCapacity int    `json:"max_capacity"`
	Timezone    string `json:"timezone"`
}

// UpdateEventRequest carries a partial event edit; nil fields are untouched.
type UpdateEventRequest struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// EventUpdate is the validated, UTC-normalised form of an event edit that
// the repository applies under the per-event lock.
type EventUpdate struct {
	Name        *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	MaxCapacity *int
	Timezone    *string
}

// RegisterRequest is the payload for registering an attendee.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventList is the paginated response envelope for event listings.
type EventList struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
