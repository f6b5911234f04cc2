package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// AdminDashboardHandler handles the clinic dashboard overview endpoint.
type AdminDashboardHandler struct {
	db     postgres.DBTX
	repo   practitioners.Repository
	logger *logging.Logger
}

// NewAdminDashboardHandler creates a new admin dashboard handler.
func NewAdminDashboardHandler(db postgres.DBTX, repo practitioners.Repository, logger *logging.Logger) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminDashboardHandler{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

// DashboardOverviewResponse contains the clinic dashboard metrics.
type DashboardOverviewResponse struct {
	Customers     int                `json:"customers"`
	Practitioners int                `json:"practitioners"`
	Appointments  AppointmentMetrics `json:"appointments"`
	Triage        TriageMetrics      `json:"triage"`
}

// AppointmentMetrics contains appointment counts for the dashboard.
type AppointmentMetrics struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
}

// TriageMetrics contains questionnaire counts for the dashboard.
type TriageMetrics struct {
	Submitted   int `json:"submitted"`
	HighUrgency int `json:"high_urgency"`
}

// GetDashboardOverview returns the clinic dashboard overview.
// GET /admin/dashboard
func (h *AdminDashboardHandler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := DashboardOverviewResponse{}

	if err := h.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&resp.Customers); err != nil {
		h.logger.Error("failed to count customers", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRow(ctx, `SELECT COUNT(*) FROM practitioners WHERE active`).Scan(&resp.Practitioners); err != nil {
		h.logger.Error("failed to count practitioners", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	err := h.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'scheduled'),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COUNT(*) FILTER (WHERE appointment_date = $1 AND status <> 'cancelled')
		FROM appointments`, today).Scan(
		&resp.Appointments.Total,
		&resp.Appointments.Scheduled,
		&resp.Appointments.Completed,
		&resp.Appointments.Cancelled,
		&resp.Appointments.Today,
	)
	if err != nil {
		h.logger.Error("failed to count appointments", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	err = h.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE urgency_level = 'high')
		FROM questionnaires`).Scan(&resp.Triage.Submitted, &resp.Triage.HighUrgency)
	if err != nil {
		h.logger.Error("failed to count questionnaires", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SetPractitionerActive enables or disables a practitioner in the directory.
// PUT /admin/practitioners/{practitionerID}/active
func (h *AdminDashboardHandler) SetPractitionerActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "practitionerID")
	if err := h.repo.SetActive(r.Context(), id, req.Active); err != nil {
		if errors.Is(err, practitioners.ErrPractitionerNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update practitioner", "error", err, "practitioner_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"practitioner_id": id, "active": req.Active})
}
