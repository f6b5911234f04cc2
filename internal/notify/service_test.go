package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpaw/vetclinic-platform/internal/appointments"
	"github.com/brightpaw/vetclinic-platform/internal/customers"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
)

type capturingSender struct {
	sent []EmailMessage
	err  error
}

func (s *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubCustomers struct {
	customer *customers.Customer
	err      error
}

func (s *stubCustomers) GetByID(context.Context, string) (*customers.Customer, error) {
	return s.customer, s.err
}

type stubPractitioners struct {
	practitioner *practitioners.Practitioner
	err          error
}

func (s *stubPractitioners) GetByID(context.Context, string) (*practitioners.Practitioner, error) {
	return s.practitioner, s.err
}

func (s *stubPractitioners) List(context.Context, practitioners.ListFilter) ([]*practitioners.Practitioner, error) {
	return nil, nil
}

func (s *stubPractitioners) SetActive(context.Context, string, bool) error {
	return nil
}

func testParties() (*stubCustomers, *stubPractitioners) {
	custs := &stubCustomers{customer: &customers.Customer{
		ID:       "cust-1",
		Email:    "nimal@example.com",
		FullName: "Nimal Perera",
	}}
	vets := &stubPractitioners{practitioner: &practitioners.Practitioner{
		ID:       "vet-1",
		FullName: "Dr. Asha Perera",
	}}
	return custs, vets
}

func confirmedAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		ID:             "appt-1",
		BookingCode:    "APT1756380000000X7K2M9QD4",
		CustomerID:     "cust-1",
		PractitionerID: "vet-1",
		Pet:            appointments.PetInfo{Name: "Biscuit"},
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		SlotLabel:      "10:30 AM",
	}
}

func TestBookingConfirmedEmail(t *testing.T) {
	sender := &capturingSender{}
	custs, vets := testParties()
	svc := NewService(sender, custs, vets, nil)

	svc.BookingConfirmed(context.Background(), confirmedAppointment())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "nimal@example.com", msg.To)
	assert.Equal(t, "Appointment confirmed: APT1756380000000X7K2M9QD4", msg.Subject)
	assert.Contains(t, msg.Body, "Biscuit")
	assert.Contains(t, msg.Body, "Dr. Asha Perera")
	assert.Contains(t, msg.Body, "Monday, 2 March 2026")
	assert.Contains(t, msg.Body, "10:30 AM")
}

func TestBookingCancelledEmail(t *testing.T) {
	sender := &capturingSender{}
	custs, vets := testParties()
	svc := NewService(sender, custs, vets, nil)

	svc.BookingCancelled(context.Background(), confirmedAppointment())

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Appointment cancelled")
	assert.Contains(t, sender.sent[0].Body, "has been cancelled")
}

func TestNotifySwallowsDeliveryFailures(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	custs, vets := testParties()
	svc := NewService(sender, custs, vets, nil)

	// Must not panic or propagate.
	svc.BookingConfirmed(context.Background(), confirmedAppointment())
	assert.Empty(t, sender.sent)
}

func TestNotifySkipsUnknownCustomer(t *testing.T) {
	sender := &capturingSender{}
	_, vets := testParties()
	svc := NewService(sender, &stubCustomers{err: customers.ErrCustomerNotFound}, vets, nil)

	svc.BookingConfirmed(context.Background(), confirmedAppointment())
	assert.Empty(t, sender.sent)
}

func TestNotifyFallsBackWhenPractitionerUnknown(t *testing.T) {
	sender := &capturingSender{}
	custs, _ := testParties()
	svc := NewService(sender, custs, &stubPractitioners{err: practitioners.ErrPractitionerNotFound}, nil)

	svc.BookingConfirmed(context.Background(), confirmedAppointment())

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "your veterinarian")
}

func TestNilEmailSenderDisablesDelivery(t *testing.T) {
	custs, vets := testParties()
	svc := NewService(nil, custs, vets, nil)

	// No sender configured; must be a silent no-op.
	svc.BookingConfirmed(context.Background(), confirmedAppointment())
	svc.BookingCancelled(context.Background(), confirmedAppointment())
}
