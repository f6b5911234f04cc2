package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpaw/vetclinic-platform/internal/http/middleware"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Handler handles HTTP requests for saved cards and settlements.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ListCards handles GET /payments/cards.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	cards, err := h.service.Cards().ListForCustomer(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("failed to list saved cards", "error", err, "customer_id", actor.ID)
		http.Error(w, "failed to list cards", http.StatusInternalServerError)
		return
	}
	if cards == nil {
		cards = []*SavedCard{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

// SaveCard handles POST /payments/cards.
func (h *Handler) SaveCard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var req SaveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode save card request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	card, err := h.service.Cards().Save(r.Context(), actor.ID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(card)
}

// DeleteCard handles DELETE /payments/cards/{cardID}.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	if err := h.service.Cards().Delete(r.Context(), actor.ID, chi.URLParam(r, "cardID")); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Card removed"})
}

type chargeRequest struct {
	AppointmentID string `json:"appointment_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// Charge handles POST /payments/charge.
func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode charge request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "amount_cents must be positive", http.StatusBadRequest)
		return
	}

	receipt, err := h.service.Charge(r.Context(), actor.ID, req.AppointmentID, req.AmountCents)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

type cashRequest struct {
	AppointmentID string `json:"appointment_id"`
}

// ChooseCash handles POST /payments/cash.
func (h *Handler) ChooseCash(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing actor context", http.StatusUnauthorized)
		return
	}

	var req cashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.ChooseCash(r.Context(), actor.ID, req.AppointmentID); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Cash payment selected"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCardNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateCard):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrPaymentDeclined):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, ErrAppointmentNotEligible):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("payment request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
