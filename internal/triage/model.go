package triage

import (
	"errors"
	"time"
)

var (
	// ErrQuestionnaireNotFound is returned when a questionnaire is not found
	ErrQuestionnaireNotFound = errors.New("triage: questionnaire not found")

	// ErrForbidden is returned when the actor is neither the owning customer
	// nor the assigned practitioner
	ErrForbidden = errors.New("triage: not authorized to view this questionnaire")
)

// Questionnaire is a persisted pre-visit triage submission. The derived
// Summary and Urgency fields are computed once at creation and never
// recomputed.
type Questionnaire struct {
	ID             string    `json:"id"`
	AppointmentID  string    `json:"appointment_id"`
	CustomerID     string    `json:"customer_id"`
	PractitionerID string    `json:"practitioner_id"`
	PetInfo        PetInfo   `json:"pet_info"`
	Responses      Responses `json:"responses"`
	Summary        string    `json:"summary"`
	Urgency        Urgency   `json:"urgency_level"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// VisibleTo reports whether actorID may read this questionnaire.
func (q *Questionnaire) VisibleTo(actorID string) bool {
	return actorID == q.CustomerID || actorID == q.PractitionerID
}
