package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/internal/schedule"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("vetclinic.internal.appointments")

// PractitionerDirectory resolves practitioner records for booking.
type PractitionerDirectory interface {
	GetByID(ctx context.Context, id string) (*practitioners.Practitioner, error)
}

// Notifier delivers lifecycle notifications. Implementations must never let a
// delivery failure propagate into the booking path.
type Notifier interface {
	BookingConfirmed(ctx context.Context, appt *Appointment)
	BookingCancelled(ctx context.Context, appt *Appointment)
}

// Service drives the booking transaction and the lifecycle state machine.
type Service struct {
	repo      Repository
	directory PractitionerDirectory
	notifier  Notifier
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs an appointments service. notifier and bookingMetrics
// may be nil.
func NewService(repo Repository, directory PractitionerDirectory, notifier Notifier, bookingMetrics *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if directory == nil {
		panic("appointments: practitioner directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		metrics:   bookingMetrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Book validates and commits a new appointment. On success the appointment is
// scheduled, indexed for both parties, and any supplied questionnaire is
// summarized and linked. A conflicting booking for the same
// (practitioner, date, slot) key fails with ErrSlotUnavailable.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.practitioner_id", req.PractitionerID),
		attribute.String("vetclinic.customer_id", req.CustomerID),
	)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	day, err := req.ParseDate()
	if err != nil {
		return nil, err
	}
	minute, err := req.SlotMinute()
	if err != nil {
		return nil, err
	}

	if _, err := s.directory.GetByID(ctx, req.PractitionerID); err != nil {
		if errors.Is(err, practitioners.ErrPractitionerNotFound) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}

	// Advisory pre-check; the partial unique index remains the authority at
	// commit time, so two requests passing this together cannot both land.
	existing, err := s.repo.ListForPractitionerDay(ctx, req.PractitionerID, day)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.SlotMinute == minute {
			s.metrics.ObserveConflict()
			return nil, ErrSlotUnavailable
		}
	}

	appt := &Appointment{
		ID:             uuid.New().String(),
		BookingCode:    NewBookingCode(),
		CustomerID:     req.CustomerID,
		PractitionerID: req.PractitionerID,
		Pet:            req.Pet,
		Date:           day,
		SlotMinute:     minute,
		SlotLabel:      schedule.FormatLabel(minute),
		Reason:         req.Reason,
		Status:         StatusScheduled,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  PaymentPending,
	}

	var q *triage.Questionnaire
	if req.Questionnaire != nil {
		result := triage.Summarize(triage.PetInfo(req.Pet), req.Questionnaire.Responses)
		q = &triage.Questionnaire{
			ID:             uuid.New().String(),
			CustomerID:     req.CustomerID,
			PractitionerID: req.PractitionerID,
			PetInfo:        triage.PetInfo(req.Pet),
			Responses:      req.Questionnaire.Responses,
			Summary:        result.Summary,
			Urgency:        result.Urgency,
		}
		s.metrics.ObserveTriage(string(result.Urgency))
	}

	if err := s.repo.CreateBooking(ctx, appt, q); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			s.metrics.ObserveConflict()
			return nil, ErrSlotUnavailable
		}
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveBooked(string(appt.PaymentMethod))
	s.logger.Info("appointment booked",
		"booking_code", appt.BookingCode,
		"practitioner_id", appt.PractitionerID,
		"customer_id", appt.CustomerID,
		"date", req.Date,
		"slot", appt.SlotLabel,
	)

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, appt)
	}
	return appt, nil
}

// Cancel transitions a scheduled future appointment to cancelled. Only the
// owning customer may cancel.
func (s *Service) Cancel(ctx context.Context, appointmentID, actorID string) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()

	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.CustomerID != actorID {
		return nil, ErrForbidden
	}
	if appt.Status != StatusScheduled {
		return nil, ErrInvalidTransition
	}
	if appt.Date.Before(startOfDay(s.now().UTC())) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Cancel(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveCancelled()
	s.logger.Info("appointment cancelled", "booking_code", appt.BookingCode, "customer_id", actorID)

	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, appt)
	}
	return appt, nil
}

// CompleteRequest carries the practitioner's close-out details.
type CompleteRequest struct {
	Notes           string `json:"notes"`
	PaymentReceived bool   `json:"payment_received"`
	AmountCents     int64  `json:"amount_cents"`
}

// Complete transitions a scheduled appointment to completed. Only the
// assigned practitioner may complete; a cash settlement marks the payment
// completed with the received amount.
func (s *Service) Complete(ctx context.Context, appointmentID, actorID string, req CompleteRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.complete")
	defer span.End()

	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PractitionerID != actorID {
		return nil, ErrForbidden
	}
	if appt.Status != StatusScheduled {
		return nil, ErrInvalidTransition
	}

	appt.Notes = req.Notes
	if appt.PaymentMethod == PaymentCash && req.PaymentReceived {
		paidAt := s.now().UTC()
		appt.PaymentStatus = PaymentCompleted
		appt.Payment.AmountCents = req.AmountCents
		appt.Payment.PaidAt = &paidAt
	}

	if err := s.repo.Complete(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveCompleted()
	s.logger.Info("appointment completed", "booking_code", appt.BookingCode, "practitioner_id", actorID)
	return appt, nil
}

// Get returns an appointment to one of its two parties.
func (s *Service) Get(ctx context.Context, appointmentID, actorID string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.CustomerID != actorID && appt.PractitionerID != actorID {
		return nil, ErrForbidden
	}
	return appt, nil
}

// ListForCustomer returns the customer's booking history, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]*Appointment, error) {
	return s.repo.ListForCustomer(ctx, customerID)
}

// ListForPractitioner returns the practitioner's indexed appointments.
func (s *Service) ListForPractitioner(ctx context.Context, practitionerID string) ([]*Appointment, error) {
	return s.repo.ListForPractitioner(ctx, practitionerID)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
