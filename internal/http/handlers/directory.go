package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightpaw/vetclinic-platform/internal/availability"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

const dateLayout = "2006-01-02"

// DirectoryHandler serves the practitioner directory and availability views.
type DirectoryHandler struct {
	repo     practitioners.Repository
	resolver *availability.Resolver
	logger   *logging.Logger
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(repo practitioners.Repository, resolver *availability.Resolver, logger *logging.Logger) *DirectoryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectoryHandler{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// List returns active practitioners, filtered by the optional location,
// specialization, time and date query parameters. A time filter keeps only
// practitioners whose grid contains that slot; with a date it must also be
// unbooked on that day.
// GET /practitioners
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := practitioners.ListFilter{
		Location:       r.URL.Query().Get("location"),
		Specialization: r.URL.Query().Get("specialization"),
	}

	list, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list practitioners", "error", err)
		http.Error(w, "failed to list practitioners", http.StatusInternalServerError)
		return
	}

	wantTime := r.URL.Query().Get("time")
	if wantTime != "" {
		var day *time.Time
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
			if err != nil {
				http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			day = &parsed
		}

		filtered := make([]*practitioners.Practitioner, 0, len(list))
		for _, p := range list {
			ok, err := h.hasOpenSlot(r, p.ID, wantTime, day)
			if err != nil {
				h.logger.Error("failed to resolve availability", "error", err, "practitioner_id", p.ID)
				http.Error(w, "failed to resolve availability", http.StatusInternalServerError)
				return
			}
			if ok {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}

	if list == nil {
		list = []*practitioners.Practitioner{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Get returns a single practitioner.
// GET /practitioners/{practitionerID}
func (h *DirectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "practitionerID"))
	if err != nil {
		if errors.Is(err, practitioners.ErrPractitionerNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load practitioner", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// Slots returns the slot view for a practitioner. Without a date every slot
// reports free; with a date booked slots are flagged.
// GET /practitioners/{practitionerID}/slots
func (h *DirectoryHandler) Slots(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = &parsed
	}

	slots, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "practitionerID"), day)
	if err != nil {
		if errors.Is(err, practitioners.ErrPractitionerNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve availability", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slots)
}

func (h *DirectoryHandler) hasOpenSlot(r *http.Request, practitionerID, label string, day *time.Time) (bool, error) {
	slots, err := h.resolver.Resolve(r.Context(), practitionerID, day)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s.Label == label {
			return !s.IsBooked, nil
		}
	}
	return false, nil
}
