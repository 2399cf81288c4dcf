package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/clock"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
)

func newTestRegistrationService(ledger *fakeLedger) *RegistrationService {
	return NewRegistrationService(ledger, ledger, clock.NewFixed(testNow))
}

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()

	future := testNow.Add(time.Hour)

	t.Run("capacity-1 event fills then rejects", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.addEvent("event-1", future, 1)
		svc := newTestRegistrationService(ledger)

		attendee, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "A@X.com"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if attendee.Email != "a@x.com" {
			t.Fatalf("expected lowercased email, got %q", attendee.Email)
		}
		if got := ledger.count("event-1"); got != 1 {
			t.Fatalf("expected counter 1, got %d", got)
		}

		_, err = svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Bob", Email: "b@x.com"})
		if !errors.Is(err, repository.ErrCapacityExceeded) {
			t.Fatalf("expected ErrCapacityExceeded, got %v", err)
		}
		if got := ledger.count("event-1"); got != 1 {
			t.Fatalf("failed attempt must leave counter unchanged, got %d", got)
		}
	})

	t.Run("duplicate email per event, reusable across events", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.addEvent("event-1", future, 10)
		ledger.addEvent("event-2", future, 10)
		svc := newTestRegistrationService(ledger)

		if _, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "a@x.com"}); err != nil {
			t.Fatalf("first: %v", err)
		}
		_, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "a@x.com"})
		if !errors.Is(err, repository.ErrDuplicateRegistration) {
			t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
		}
		if _, err := svc.Register(context.Background(), "event-2", model.RegisterRequest{Name: "Alice", Email: "a@x.com"}); err != nil {
			t.Fatalf("cross-event registration should succeed, got %v", err)
		}
	})

	t.Run("started event rejects registration", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.addEvent("event-1", testNow.Add(-time.Hour), 10)
		svc := newTestRegistrationService(ledger)

		_, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Late", Email: "l@x.com"})
		if !errors.Is(err, repository.ErrEventNotUpcoming) {
			t.Fatalf("expected ErrEventNotUpcoming, got %v", err)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := newTestRegistrationService(newFakeLedger())

		_, err := svc.Register(context.Background(), "missing", model.RegisterRequest{Name: "X", Email: "x@x.com"})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.addEvent("event-1", future, 10)
		svc := newTestRegistrationService(ledger)

		cases := []model.RegisterRequest{
			{Name: "", Email: "a@x.com"},
			{Name: "Alice", Email: ""},
			{Name: "Alice", Email: "not-an-email"},
			{Name: "Alice", Email: "a@nodot"},
			{Name: "Alice", Email: "@x.com"},
		}
		for _, req := range cases {
			var vErr *ValidationError
			if _, err := svc.Register(context.Background(), "event-1", req); !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError for %+v, got %v", req, err)
			}
		}
		if got := ledger.count("event-1"); got != 0 {
			t.Fatalf("validation failures must not register anyone, got %d", got)
		}
	})
}

// TestRegistrationService_ConcurrentRegistrations exercises the capacity
// property end to end against the serialised in-memory ledger: M attempts
// against N slots yield exactly N successes.
func TestRegistrationService_ConcurrentRegistrations(t *testing.T) {
	t.Parallel()

	const capacity = 4
	const attempts = 20

	ledger := newFakeLedger()
	ledger.addEvent("event-1", testNow.Add(time.Hour), capacity)
	svc := newTestRegistrationService(ledger)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{
				Name:  fmt.Sprintf("User %d", n),
				Email: fmt.Sprintf("user%d@x.com", n),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrCapacityExceeded):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != capacity || full != attempts-capacity {
		t.Fatalf("expected %d successes and %d rejections, got %d and %d", capacity, attempts-capacity, ok, full)
	}
	if got := ledger.count("event-1"); got != capacity {
		t.Fatalf("expected final counter %d, got %d", capacity, got)
	}
}

func TestRegistrationService_Unregister(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.addEvent("event-1", testNow.Add(time.Hour), 2)
	svc := newTestRegistrationService(ledger)

	attendee, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Unregister(context.Background(), "event-1", attendee.ID); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if got := ledger.count("event-1"); got != 0 {
		t.Fatalf("expected counter 0, got %d", got)
	}

	// The slot and email are free again.
	if _, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "a@x.com"}); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	if err := svc.Unregister(context.Background(), "event-1", attendee.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Unregister(context.Background(), "", "x"); err == nil {
		t.Fatalf("expected validation error for empty event id")
	}
}

func TestRegistrationService_ListAttendees(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.addEvent("event-1", testNow.Add(time.Hour), 5)
	svc := newTestRegistrationService(ledger)

	if _, err := svc.Register(context.Background(), "event-1", model.RegisterRequest{Name: "Alice", Email: "a@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	attendees, err := svc.ListAttendees(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attendees) != 1 || attendees[0].Email != "a@x.com" {
		t.Fatalf("unexpected attendees: %+v", attendees)
	}

	if _, err := svc.ListAttendees(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// fakeLedger reproduces the repository's registration semantics in memory,
// serialised by a mutex the way the database serialises on the row lock.
type fakeLedger struct {
	mu        sync.Mutex
	events    map[string]*fakeLedgerEvent
	attendees map[string][]model.Attendee
	nextID    int
}

type fakeLedgerEvent struct {
	start       time.Time
	maxCapacity int
	current     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		events:    make(map[string]*fakeLedgerEvent),
		attendees: make(map[string][]model.Attendee),
	}
}

func (f *fakeLedger) addEvent(id string, start time.Time, maxCapacity int) {
	f.events[id] = &fakeLedgerEvent{start: start, maxCapacity: maxCapacity}
}

func (f *fakeLedger) count(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[eventID].current
}

func (f *fakeLedger) Register(_ context.Context, eventID, name, email string, now time.Time) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !event.start.After(now) {
		return nil, repository.ErrEventNotUpcoming
	}
	for _, a := range f.attendees[eventID] {
		if a.Email == email {
			return nil, repository.ErrDuplicateRegistration
		}
	}
	if event.current >= event.maxCapacity {
		return nil, repository.ErrCapacityExceeded
	}

	f.nextID++
	attendee := model.Attendee{
		ID:        fmt.Sprintf("attendee-%d", f.nextID),
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}
	f.attendees[eventID] = append(f.attendees[eventID], attendee)
	event.current++
	return &attendee, nil
}

func (f *fakeLedger) Unregister(_ context.Context, eventID, attendeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	list := f.attendees[eventID]
	for i, a := range list {
		if a.ID == attendeeID {
			f.attendees[eventID] = append(list[:i:i], list[i+1:]...)
			event.current--
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLedger) ListByEvent(_ context.Context, eventID string) ([]model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Attendee{}, f.attendees[eventID]...), nil
}

// GetByID lets the fake double as the EventGetter dependency.
func (f *fakeLedger) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Event{ID: id, StartTime: event.start, MaxCapacity: event.maxCapacity, CurrentAttendees: event.current}, nil
}
