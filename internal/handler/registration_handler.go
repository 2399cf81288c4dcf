package handler

import (
	"context"
	"net/http"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/go-chi/chi/v5"
)

// RegistrationCore is the slice of the service layer the registration
// handlers need.
type RegistrationCore interface {
	Register(ctx context.Context, eventID string, req model.RegisterRequest) (*model.Attendee, error)
	Unregister(ctx context.Context, eventID, attendeeID string) error
	ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error)
}

// RegistrationHandler holds the HTTP handlers for attendee registration.
type RegistrationHandler struct {
	svc RegistrationCore
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc RegistrationCore) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register handles POST /events/{id}/register
// Performs a concurrency-safe registration for the specified event.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	attendee, err := h.svc.Register(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attendee)
}

// Unregister handles DELETE /events/{id}/registrations/{attendeeID}
func (h *RegistrationHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Unregister(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "attendeeID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// ListAttendees handles GET /events/{id}/registrations
func (h *RegistrationHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.svc.ListAttendees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attendees)
}
