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

// CapacityLedger captures the registration operations whose atomicity the
// repository guarantees under the per-event row lock.
type CapacityLedger interface {
	Register(ctx context.Context, eventID, name, email string, now time.Time) (*model.Attendee, error)
	Unregister(ctx context.Context, eventID, attendeeID string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Attendee, error)
}

// EventGetter is the narrow read the registration service needs from the
// event directory.
type EventGetter interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// RegistrationService validates registration requests and delegates the
// concurrency-safe bookkeeping to the capacity ledger.
type RegistrationService struct {
	ledger CapacityLedger
	events EventGetter
	clock  clock.Clock
}

// NewRegistrationService constructs a RegistrationService with its dependencies.
func NewRegistrationService(ledger CapacityLedger, events EventGetter, clk clock.Clock) *RegistrationService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &RegistrationService{ledger: ledger, events: events, clock: clk}
}

// Register validates the attendee details and performs the atomic
// register-and-increment against the event's remaining capacity.
func (s *RegistrationService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (*model.Attendee, error) {
	if eventID == "" {
		return nil, invalidf("event id is required")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalidf("name is required")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, invalidf("email is required")
	}
	if !isValidEmail(req.Email) {
		return nil, invalidf("email is not a valid email address")
	}

	attendee, err := s.ledger.Register(ctx, eventID, req.Name, req.Email, s.clock.Now())
	if err != nil {
		// Surface domain errors directly so handlers can set correct HTTP status.
		if errors.Is(err, repository.ErrNotFound) ||
			errors.Is(err, repository.ErrEventNotUpcoming) ||
			errors.Is(err, repository.ErrCapacityExceeded) ||
			errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("register for event: %w", err)
	}
	return attendee, nil
}

// Unregister removes a single attendee and frees one capacity slot.
func (s *RegistrationService) Unregister(ctx context.Context, eventID, attendeeID string) error {
	if eventID == "" {
		return invalidf("event id is required")
	}
	if attendeeID == "" {
		return invalidf("attendee id is required")
	}
	if err := s.ledger.Unregister(ctx, eventID, attendeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("unregister from event: %w", err)
	}
	return nil
}

// ListAttendees returns all attendees for an event.
func (s *RegistrationService) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	if eventID == "" {
		return nil, invalidf("event id is required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendees, err := s.ledger.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []model.Attendee{}
	}
	return attendees, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
