// Package repository implements all database queries for the event
// registration system. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, name, location, start_time, end_time, timezone,
		max_capacity, current_attendees, created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
// The caller supplies validated, UTC-normalised fields and timestamps.
func (r *EventRepository) Create(ctx context.Context, event model.Event) (*model.Event, error) {
	event.ID = uuid.New().String()
	event.CurrentAttendees = 0

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, name, location, start_time, end_time, timezone,
		 max_capacity, current_attendees, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Name, event.Location, event.StartTime, event.EndTime,
		event.Timezone, event.MaxCapacity, event.CurrentAttendees,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

// ListFilter narrows and pages event listings.
type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}

// List returns a page of events ordered by start time ascending, plus the
// total number of events matching the filter.
func (r *EventRepository) List(ctx context.Context, filter ListFilter) ([]model.Event, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	pattern := "%" + filter.Query + "%"

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM events
		 WHERE $1 = '' OR name ILIKE $2 OR location ILIKE $2`,
		filter.Query, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE $1 = '' OR name ILIKE $2 OR location ILIKE $2
		 ORDER BY start_time ASC, id ASC
		 LIMIT $3 OFFSET $4`,
		filter.Query, pattern, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	)
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// Update applies a partial edit to an event. Capacity and time edits are
// applied under the per-event row lock so they cannot race with concurrent
// registrations: lowering max_capacity below current_attendees is rejected
// with ErrCapacityTooLow, and the merged time window must stay ordered.
func (r *EventRepository) Update(ctx context.Context, id string, upd model.EventUpdate, now time.Time) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var e model.Event
	row := tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id,
	)
	if err = scanEvent(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.Timezone != nil {
		e.Timezone = *upd.Timezone
	}
	if upd.MaxCapacity != nil {
		e.MaxCapacity = *upd.MaxCapacity
	}

	if !e.StartTime.Before(e.EndTime) {
		err = ErrInvalidTimeRange
		return nil, err
	}
	if e.MaxCapacity < e.CurrentAttendees {
		err = ErrCapacityTooLow
		return nil, err
	}

	e.UpdatedAt = now
	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET name = $2, location = $3, start_time = $4, end_time = $5,
		     timezone = $6, max_capacity = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.Name, e.Location, e.StartTime, e.EndTime,
		e.Timezone, e.MaxCapacity, e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &e, nil
}

// Delete removes an event; the attendees table's ON DELETE CASCADE foreign
// key removes its attendee rows in the same atomic statement.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanEvent reads one event row; times come back in UTC.
func scanEvent(row pgx.Row, e *model.Event) error {
	err := row.Scan(
		&e.ID, &e.Name, &e.Location, &e.StartTime, &e.EndTime, &e.Timezone,
		&e.MaxCapacity, &e.CurrentAttendees, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return nil
}
