package appointments

import "errors"

var (
	// ErrPractitionerNotFound is returned when the referenced practitioner does not exist
	ErrPractitionerNotFound = errors.New("appointments: practitioner not found")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrSlotUnavailable is returned when the requested slot already holds a
	// non-cancelled booking; callers should re-query availability and retry
	ErrSlotUnavailable = errors.New("appointments: this time slot is not available")

	// ErrForbidden is returned when the actor lacks rights for the requested action
	ErrForbidden = errors.New("appointments: not authorized for this appointment")

	// ErrInvalidTransition is returned for a status-machine violation,
	// distinct from an authorization failure
	ErrInvalidTransition = errors.New("appointments: invalid status transition")

	// Validation errors: recoverable by the caller correcting input.
	ErrMissingDate          = errors.New("appointments: appointment date is required")
	ErrMissingSlot          = errors.New("appointments: time slot is required")
	ErrMissingPetName       = errors.New("appointments: pet name is required")
	ErrMissingReason        = errors.New("appointments: visit reason is required")
	ErrMissingPaymentMethod = errors.New("appointments: payment method is required")
	ErrBadSlotLabel         = errors.New("appointments: malformed time slot label")
	ErrBadPaymentMethod     = errors.New("appointments: payment method must be card or cash")
)

var validationErrors = []error{
	ErrMissingDate,
	ErrMissingSlot,
	ErrMissingPetName,
	ErrMissingReason,
	ErrMissingPaymentMethod,
	ErrBadSlotLabel,
	ErrBadPaymentMethod,
}

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
