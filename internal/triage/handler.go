package triage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpaw/vetclinic-platform/internal/http/middleware"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Handler serves questionnaire lookups and the stateless summary preview.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new triage handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type previewRequest struct {
	PetInfo   PetInfo   `json:"pet_info"`
	Responses Responses `json:"responses"`
}

// Preview handles POST /triage/preview. It summarizes the submitted responses
// without persisting anything, so clients can show the owner what the clinic
// will see before the booking is made.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode triage preview", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := Summarize(req.PetInfo, req.Responses)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Get handles GET /triage/{questionnaireID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	q, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "questionnaireID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !q.VisibleTo(actor.ID) {
		http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

// GetByAppointment handles GET /appointments/{appointmentID}/triage.
func (h *Handler) GetByAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	q, err := h.repo.GetByAppointment(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !q.VisibleTo(actor.ID) {
		http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrQuestionnaireNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("triage request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
