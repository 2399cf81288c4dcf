// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/clock"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
)

// maxCapacityLimit caps administrative input; generous for a single-node service.
const maxCapacityLimit = 100_000

// EventStore captures the event persistence operations the service needs.
type EventStore interface {
	Create(ctx context.Context, event model.Event) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter repository.ListFilter) ([]model.Event, int, error)
	Update(ctx context.Context, id string, upd model.EventUpdate, now time.Time) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService owns the event CRUD lifecycle: validation, timezone
// normalisation, and delegation to the repository.
type EventService struct {
	events EventStore
	clock  clock.Clock
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, clk clock.Clock) *EventService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &EventService{events: events, clock: clk}
}

// CreateEvent validates the request, converts the caller's wall-clock times
// from the event timezone to UTC, and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" {
		return nil, invalidf("event name is required")
	}
	if req.Location == "" {
		return nil, invalidf("event location is required")
	}
	if req.MaxCapacity <= 0 {
		return nil, invalidf("max_capacity must be a positive integer")
	}
	if req.MaxCapacity > maxCapacityLimit {
		return nil, invalidf("max_capacity cannot exceed %d", maxCapacityLimit)
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, invalidf("timezone %q is not a valid IANA zone name", tz)
	}

	start, err := parseInZone(req.StartTime, loc)
	if err != nil {
		return nil, invalidf("start_time: %v", err)
	}
	end, err := parseInZone(req.EndTime, loc)
	if err != nil {
		return nil, invalidf("end_time: %v", err)
	}

	now := s.clock.Now()
	if !start.After(now) {
		return nil, invalidf("start_time must be in the future")
	}
	if !start.Before(end) {
		return nil, invalidf("end_time must be after start_time")
	}

	event := model.Event{
		Name:        req.Name,
		Location:    req.Location,
		StartTime:   start,
		EndTime:     end,
		Timezone:    tz,
		MaxCapacity: req.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// ListEvents returns a page of events, optionally filtered by a name or
// location substring.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int, query string) (*model.EventList, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	events, total, err := s.events.List(ctx, repository.ListFilter{
		Query:  strings.TrimSpace(query),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return &model.EventList{Events: events, Total: total, Limit: limit, Offset: offset}, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, invalidf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial administrative edit. Touched fields are
// re-validated against the creation rules; the capacity floor
// (max_capacity >= current_attendees) is enforced by the repository under
// the per-event row lock.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	if id == "" {
		return nil, invalidf("event id is required")
	}

	upd := model.EventUpdate{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("event name cannot be empty")
		}
		upd.Name = &name
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			return nil, invalidf("event location cannot be empty")
		}
		upd.Location = &location
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity <= 0 {
			return nil, invalidf("max_capacity must be a positive integer")
		}
		if *req.MaxCapacity > maxCapacityLimit {
			return nil, invalidf("max_capacity cannot exceed %d", maxCapacityLimit)
		}
		upd.MaxCapacity = req.MaxCapacity
	}

	tz := ""
	if req.Timezone != nil {
		tz = strings.TrimSpace(*req.Timezone)
		if tz == "" {
			return nil, invalidf("timezone cannot be empty")
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, invalidf("timezone %q is not a valid IANA zone name", tz)
		}
		upd.Timezone = &tz
	}

	if req.StartTime != nil || req.EndTime != nil {
		// New wall-clock times are interpreted in the new timezone when one
		// is supplied, otherwise in the event's stored zone.
		if tz == "" {
			current, err := s.GetEvent(ctx, id)
			if err != nil {
				return nil, err
			}
			tz = current.Timezone
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, invalidf("timezone %q is not a valid IANA zone name", tz)
		}

		if req.StartTime != nil {
			start, err := parseInZone(*req.StartTime, loc)
			if err != nil {
				return nil, invalidf("start_time: %v", err)
			}
			if !start.After(s.clock.Now()) {
				return nil, invalidf("start_time must be in the future")
			}
			upd.StartTime = &start
		}
		if req.EndTime != nil {
			end, err := parseInZone(*req.EndTime, loc)
			if err != nil {
				return nil, invalidf("end_time: %v", err)
			}
			upd.EndTime = &end
		}
	}

	updated, err := s.events.Update(ctx, id, upd, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrCapacityTooLow) ||
			errors.Is(err, repository.ErrInvalidTimeRange) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes an event and, by cascade, all of its attendees.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return invalidf("event id is required")
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// parseInZone parses a wall-clock timestamp in the given location and
// returns the instant in UTC. Offset-qualified RFC 3339 input is also
// accepted; its own offset wins.
func parseInZone(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("is required")
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q is not a valid timestamp", value)
}
