package appointments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpaw/vetclinic-platform/internal/http/middleware"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type bookingResponse struct {
	Message     string       `json:"message"`
	Appointment *Appointment `json:"appointment"`
}

// Book handles POST /practitioners/{practitionerID}/appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.PractitionerID = chi.URLParam(r, "practitionerID")
	req.CustomerID = actor.ID

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bookingResponse{
		Message:     "Appointment booked successfully",
		Appointment: appt,
	})
}

// Get handles GET /appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	appt, err := h.service.Get(r.Context(), chi.URLParam(r, "appointmentID"), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// Cancel handles PUT /appointments/{appointmentID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	appt, err := h.service.Cancel(r.Context(), chi.URLParam(r, "appointmentID"), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookingResponse{
		Message:     "Appointment cancelled successfully",
		Appointment: appt,
	})
}

// Complete handles PUT /appointments/{appointmentID}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Complete(r.Context(), chi.URLParam(r, "appointmentID"), actor.ID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookingResponse{
		Message:     "Appointment completed successfully",
		Appointment: appt,
	})
}

// ListMine handles GET /appointments, returning the actor's bookings.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var (
		appts []*Appointment
		err   error
	)
	if actor.Role == middleware.RolePractitioner {
		appts, err = h.service.ListForPractitioner(r.Context(), actor.ID)
	} else {
		appts, err = h.service.ListForCustomer(r.Context(), actor.ID)
	}
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "actor_id", actor.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appts)
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPractitionerNotFound), errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSlotUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("appointment request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
