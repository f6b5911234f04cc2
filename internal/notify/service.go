package notify

import (
	"context"
	"fmt"

	"github.com/brightpaw/vetclinic-platform/internal/appointments"
	"github.com/brightpaw/vetclinic-platform/internal/customers"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Service composes and sends appointment lifecycle emails.
type Service struct {
	email         EmailSender
	customers     customers.Repository
	practitioners practitioners.Repository
	logger        *logging.Logger
}

// NewService creates a notification service. A nil email sender disables
// delivery entirely.
func NewService(email EmailSender, customerRepo customers.Repository, practitionerRepo practitioners.Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:         email,
		customers:     customerRepo,
		practitioners: practitionerRepo,
		logger:        logger,
	}
}

// BookingConfirmed emails the customer their booking details. Errors are
// logged, never returned: a failed email must not fail the booking.
func (s *Service) BookingConfirmed(ctx context.Context, appt *appointments.Appointment) {
	if s == nil || s.email == nil {
		return
	}

	customer, practitionerName, ok := s.resolveParties(ctx, appt)
	if !ok {
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment for %s is confirmed.\n\nBooking code: %s\nVeterinarian: %s\nDate: %s\nTime: %s\n\nSee you at the clinic.\n",
		customer.FullName,
		appt.Pet.Name,
		appt.BookingCode,
		practitionerName,
		appt.Date.Format("Monday, 2 January 2006"),
		appt.SlotLabel,
	)

	s.send(ctx, customer, "Appointment confirmed: "+appt.BookingCode, body)
}

// BookingCancelled emails the customer that their appointment was cancelled.
func (s *Service) BookingCancelled(ctx context.Context, appt *appointments.Appointment) {
	if s == nil || s.email == nil {
		return
	}

	customer, practitionerName, ok := s.resolveParties(ctx, appt)
	if !ok {
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment %s with %s on %s at %s has been cancelled.\n\nThe slot is free again; you can rebook any time.\n",
		customer.FullName,
		appt.BookingCode,
		practitionerName,
		appt.Date.Format("Monday, 2 January 2006"),
		appt.SlotLabel,
	)

	s.send(ctx, customer, "Appointment cancelled: "+appt.BookingCode, body)
}

func (s *Service) resolveParties(ctx context.Context, appt *appointments.Appointment) (*customers.Customer, string, bool) {
	customer, err := s.customers.GetByID(ctx, appt.CustomerID)
	if err != nil {
		s.logger.Error("notify: resolve customer failed", "error", err, "customer_id", appt.CustomerID)
		return nil, "", false
	}

	practitionerName := "your veterinarian"
	if p, err := s.practitioners.GetByID(ctx, appt.PractitionerID); err == nil {
		practitionerName = p.FullName
	}
	return customer, practitionerName, true
}

func (s *Service) send(ctx context.Context, customer *customers.Customer, subject, body string) {
	msg := EmailMessage{
		To:      customer.Email,
		ToName:  customer.FullName,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: email delivery failed", "error", err, "to", customer.Email)
	}
}
