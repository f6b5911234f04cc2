// Package practitioners manages the veterinarian directory consulted by the
// scheduling engine.
package practitioners

import (
	"errors"
	"time"

	"github.com/brightpaw/vetclinic-platform/internal/schedule"
)

var (
	// ErrPractitionerNotFound is returned when a practitioner is not found
	ErrPractitionerNotFound = errors.New("practitioners: practitioner not found")
)

// ClinicAddress locates the practice.
type ClinicAddress struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Location string `json:"location"`
}

// Practitioner is a bookable veterinarian.
type Practitioner struct {
	ID              string                 `json:"id"`
	Email           string                 `json:"email"`
	FullName        string                 `json:"full_name"`
	Specialization  string                 `json:"specialization"`
	ExperienceYears int                    `json:"experience_years"`
	Qualifications  []string               `json:"qualifications"`
	ContactNumber   string                 `json:"contact_number"`
	ClinicAddress   ClinicAddress          `json:"clinic_address"`
	WorkingHours    *schedule.WorkingHours `json:"working_hours,omitempty"`
	FeeCents        int64                  `json:"consultation_fee_cents"`
	Active          bool                   `json:"active"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ListFilter narrows directory queries.
type ListFilter struct {
	Location       string
	Specialization string
}
