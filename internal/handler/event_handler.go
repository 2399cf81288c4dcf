package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/go-chi/chi/v5"
)

// EventDirectory is the slice of the service layer the event handlers need.
type EventDirectory interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	ListEvents(ctx context.Context, limit, offset int, query string) (*model.EventList, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventHandler holds the HTTP handlers for event CRUD.
type EventHandler struct {
	svc EventDirectory
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventDirectory) *EventHandler {
	return &EventHandler{svc: svc}
}

// eventResponse decorates an event with its display times rendered in the
// event's own timezone.
type eventResponse struct {
	model.Event
	LocalStartTime string `json:"local_start_time"`
	LocalEndTime   string `json:"local_end_time"`
}

func newEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		Event:          *e,
		LocalStartTime: e.LocalStartTime(),
		LocalEndTime:   e.LocalEndTime(),
	}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newEventResponse(event))
}

// ListEvents handles GET /events?limit=&offset=&q=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	list, err := h.svc.ListEvents(r.Context(), limit, offset, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

// UpdateEvent handles PATCH /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newEventResponse(event))
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
