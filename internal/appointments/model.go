// Package appointments implements the booking transaction and the
// appointment lifecycle state machine.
package appointments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/brightpaw/vetclinic-platform/internal/schedule"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
)

// Status is an appointment's lifecycle state.
type Status string

// Lifecycle states. Scheduled is initial; completed and cancelled are terminal.
const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod selects how the visit is paid.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// PaymentStatus tracks settlement of the visit fee.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PetInfo is the free-form pet descriptor supplied at booking.
type PetInfo struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     string `json:"age"`
}

// PaymentDetail records a settled payment.
type PaymentDetail struct {
	TransactionID string     `json:"transaction_id,omitempty"`
	AmountCents   int64      `json:"amount_cents"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// Appointment is the central booking entity. The (PractitionerID, Date,
// SlotMinute) tuple is unique among non-cancelled appointments.
type Appointment struct {
	ID              string        `json:"id"`
	BookingCode     string        `json:"booking_code"`
	CustomerID      string        `json:"customer_id"`
	PractitionerID  string        `json:"practitioner_id"`
	Pet             PetInfo       `json:"pet"`
	Date            time.Time     `json:"date"`
	SlotMinute      int           `json:"-"`
	SlotLabel       string        `json:"time_slot"`
	Reason          string        `json:"reason"`
	Status          Status        `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Payment         PaymentDetail `json:"payment_details"`
	QuestionnaireID string        `json:"questionnaire_id,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// BookingRequest carries everything needed to book a visit.
type BookingRequest struct {
	PractitionerID string        `json:"-"`
	CustomerID     string        `json:"-"`
	Date           string        `json:"date"` // "2006-01-02"
	SlotLabel      string        `json:"time_slot"`
	Pet            PetInfo       `json:"pet"`
	Reason         string        `json:"reason"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Questionnaire  *TriageIntake `json:"questionnaire,omitempty"`
}

// TriageIntake is an optional pre-visit questionnaire accompanying a booking.
type TriageIntake struct {
	Responses triage.Responses `json:"responses"`
}

// Validate checks required fields. The pet descriptor beyond the name is
// free-form and deliberately unvalidated.
func (r *BookingRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return ErrMissingDate
	}
	if strings.TrimSpace(r.SlotLabel) == "" {
		return ErrMissingSlot
	}
	if strings.TrimSpace(r.Pet.Name) == "" {
		return ErrMissingPetName
	}
	if strings.TrimSpace(r.Reason) == "" {
		return ErrMissingReason
	}
	if r.PaymentMethod == "" {
		return ErrMissingPaymentMethod
	}
	if r.PaymentMethod != PaymentCard && r.PaymentMethod != PaymentCash {
		return ErrBadPaymentMethod
	}
	return nil
}

// ParseDate resolves the request date to midnight UTC of the calendar day.
func (r *BookingRequest) ParseDate() (time.Time, error) {
	day, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMissingDate, r.Date)
	}
	return day, nil
}

// SlotMinute normalizes the requested slot label to a minute-of-day offset.
func (r *BookingRequest) SlotMinute() (int, error) {
	minute, err := schedule.ParseLabel(r.SlotLabel)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadSlotLabel, r.SlotLabel)
	}
	return minute, nil
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBookingCode generates the human-readable booking identifier assigned at
// creation, e.g. "APT1756380000000X7K2M9QD4".
func NewBookingCode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "APT%d", time.Now().UnixMilli())
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; fall back to a time-derived character.
			b.WriteByte(codeAlphabet[time.Now().UnixNano()%int64(len(codeAlphabet))])
			continue
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}
