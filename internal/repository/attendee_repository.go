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

// AttendeeRepository handles persistence for attendees. It owns the
// capacity-safe registration transaction.
type AttendeeRepository struct {
	db *pgxpool.Pool
}

// NewAttendeeRepository constructs an AttendeeRepository.
func NewAttendeeRepository(db *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// Register performs a concurrency-safe registration inside a serialised
// transaction.
//
// A naive read-then-write sequence is broken under concurrency: two
// goroutines can both read current_attendees = max_capacity - 1 before
// either writes back, and both insert — overbooking the event. The fix is
// pessimistic locking: SELECT … FOR UPDATE takes a row-level exclusive lock
// on the event the moment the SELECT executes, so every competing
// registration for the same event queues behind the lock until COMMIT or
// ROLLBACK. Registrations for different events lock different rows and
// never contend. The (event_id, email) unique constraint doubles as an
// atomic backstop for the duplicate check.
//
// Preconditions are checked in order against the locked row: event exists,
// event is upcoming relative to the caller's clock, email not already
// registered, capacity remaining. Either every effect (attendee insert plus
// counter increment) commits, or none do.
func (r *AttendeeRepository) Register(ctx context.Context, eventID, name, email string, now time.Time) (*model.Attendee, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved.
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var startTime time.Time
	var maxCapacity, currentAttendees int
	err = tx.QueryRow(ctx,
		`SELECT start_time, max_capacity, current_attendees
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&startTime, &maxCapacity, &currentAttendees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if !startTime.After(now) {
		err = ErrEventNotUpcoming
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendees WHERE event_id = $1 AND email = $2`,
		eventID, email,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		err = ErrDuplicateRegistration
		return nil, err
	}

	if currentAttendees >= maxCapacity {
		err = ErrCapacityExceeded
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET current_attendees = current_attendees + 1, updated_at = $2 WHERE id = $1`,
		eventID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("increment current_attendees: %w", err)
	}

	attendee := &model.Attendee{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO attendees (id, event_id, name, email, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		attendee.ID, attendee.EventID, attendee.Name, attendee.Email, attendee.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateRegistration
			return nil, err
		}
		return nil, fmt.Errorf("insert attendee: %w", err)
	}

	// Only after commit does any other goroutine see the change.
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return attendee, nil
}

// Unregister removes an attendee and decrements the event counter under the
// same per-event row lock Register uses, keeping the counter in step with
// the attendee rows.
func (r *AttendeeRepository) Unregister(ctx context.Context, eventID, attendeeID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT true FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM attendees WHERE id = $1 AND event_id = $2`,
		attendeeID, eventID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET current_attendees = current_attendees - 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("decrement current_attendees: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByEvent returns all attendees for a given event ordered by
// registration time.
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Attendee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, name, email, created_at
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY created_at ASC, id ASC`,
		eventID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
