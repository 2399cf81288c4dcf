package repository

import "errors"

// ErrNotFound is returned when a requested event or attendee does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventNotUpcoming is returned when registering for an event whose start
// time is not strictly in the future.
var ErrEventNotUpcoming = errors.New("event has already started")

// ErrCapacityExceeded is returned when an event has no remaining capacity.
var ErrCapacityExceeded = errors.New("event is at full capacity")

// ErrDuplicateRegistration is returned when the same email registers twice
// for one event.
var ErrDuplicateRegistration = errors.New("email already registered for this event")

// ErrCapacityTooLow is returned when an edit would set max_capacity below
// the current attendee count.
var ErrCapacityTooLow = errors.New("max capacity cannot be lower than current attendee count")

// ErrInvalidTimeRange is returned when an edit would leave the event with
// start_time at or after end_time.
var ErrInvalidTimeRange = errors.New("start time must be before end time")
