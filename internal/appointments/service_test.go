package appointments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/internal/schedule"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
)

// fakeRepository is an in-memory Repository that enforces the live-slot
// uniqueness rule the partial index provides in Postgres.
type fakeRepository struct {
	mu             sync.Mutex
	appointments   map[string]*Appointment
	questionnaires map[string]*triage.Questionnaire
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		appointments:   make(map[string]*Appointment),
		questionnaires: make(map[string]*triage.Questionnaire),
	}
}

func slotKey(practitionerID string, day time.Time, minute int) string {
	return fmt.Sprintf("%s|%s|%d", practitionerID, day.Format("2006-01-02"), minute)
}

func (r *fakeRepository) CreateBooking(_ context.Context, appt *Appointment, q *triage.Questionnaire) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(appt.PractitionerID, appt.Date, appt.SlotMinute)
	for _, other := range r.appointments {
		if other.Status != StatusCancelled && slotKey(other.PractitionerID, other.Date, other.SlotMinute) == key {
			return ErrSlotUnavailable
		}
	}

	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	if q != nil {
		q.AppointmentID = appt.ID
		q.SubmittedAt = now
		appt.QuestionnaireID = q.ID
		r.questionnaires[q.ID] = q
	}
	clone := *appt
	r.appointments[appt.ID] = &clone
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	clone := *appt
	return &clone, nil
}

func (r *fakeRepository) ListForPractitionerDay(_ context.Context, practitionerID string, day time.Time) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, appt := range r.appointments {
		if appt.PractitionerID == practitionerID && appt.Date.Equal(day) && appt.Status != StatusCancelled {
			clone := *appt
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListForCustomer(_ context.Context, customerID string) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, appt := range r.appointments {
		if appt.CustomerID == customerID {
			clone := *appt
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListForPractitioner(_ context.Context, practitionerID string) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, appt := range r.appointments {
		if appt.PractitionerID == practitionerID {
			clone := *appt
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepository) Cancel(_ context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appointments[appt.ID]
	if !ok {
		return ErrAppointmentNotFound
	}
	stored.Status = StatusCancelled
	stored.UpdatedAt = time.Now().UTC()
	appt.Status = StatusCancelled
	appt.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeRepository) Complete(_ context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.appointments[appt.ID]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.Status = StatusCompleted
	appt.UpdatedAt = time.Now().UTC()
	clone := *appt
	r.appointments[appt.ID] = &clone
	return nil
}

type fakeDirectory struct {
	byID map[string]*practitioners.Practitioner
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (*practitioners.Practitioner, error) {
	p, ok := d.byID[id]
	if !ok {
		return nil, practitioners.ErrPractitionerNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, appt *Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, appt.ID)
}

func (n *recordingNotifier) BookingCancelled(_ context.Context, appt *Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, appt.ID)
}

const (
	testPractitionerID = "5f0c7fbd-48bf-4f12-9a7e-6d9a7baf1111"
	testCustomerID     = "0b6e0a2e-3d8f-4c41-8302-52f0cc222222"
)

func newTestService(t *testing.T) (*Service, *fakeRepository, *recordingNotifier) {
	t.Helper()
	repo := newFakeRepository()
	dir := &fakeDirectory{byID: map[string]*practitioners.Practitioner{
		testPractitionerID: {
			ID:       testPractitionerID,
			FullName: "Dr. Asha Perera",
			WorkingHours: &schedule.WorkingHours{
				StartTime:    "09:00",
				EndTime:      "17:00",
				SlotDuration: 30,
			},
		},
	}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, dir, notifier, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo, notifier
}

func validBookingRequest() *BookingRequest {
	return &BookingRequest{
		PractitionerID: testPractitionerID,
		CustomerID:     testCustomerID,
		Date:           "2026-03-02",
		SlotLabel:      "10:30 AM",
		Pet:            PetInfo{Name: "Biscuit", Species: "dog", Breed: "beagle", Age: "4"},
		Reason:         "limping on front left leg",
		PaymentMethod:  PaymentCash,
	}
}

func TestBookCreatesScheduledAppointment(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, PaymentPending, appt.PaymentStatus)
	assert.Equal(t, "10:30 AM", appt.SlotLabel)
	assert.Equal(t, 630, appt.SlotMinute)
	assert.Regexp(t, `^APT\d+[0-9A-Z]{9}$`, appt.BookingCode)
	assert.Equal(t, []string{appt.ID}, notifier.confirmed)
}

func TestBookNormalizesSlotLabel(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validBookingRequest()
	req.SlotLabel = "9:00 AM" // no leading zero

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "09:00 AM", appt.SlotLabel)
	assert.Equal(t, 540, appt.SlotMinute)
}

func TestBookValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(*BookingRequest)
		wantErr error
	}{
		{"missing date", func(r *BookingRequest) { r.Date = "" }, ErrMissingDate},
		{"missing slot", func(r *BookingRequest) { r.SlotLabel = " " }, ErrMissingSlot},
		{"missing pet name", func(r *BookingRequest) { r.Pet.Name = "" }, ErrMissingPetName},
		{"missing reason", func(r *BookingRequest) { r.Reason = "" }, ErrMissingReason},
		{"missing payment method", func(r *BookingRequest) { r.PaymentMethod = "" }, ErrMissingPaymentMethod},
		{"bad payment method", func(r *BookingRequest) { r.PaymentMethod = "cheque" }, ErrBadPaymentMethod},
		{"bad slot label", func(r *BookingRequest) { r.SlotLabel = "25:99 XM" }, ErrBadSlotLabel},
		{"bad date", func(r *BookingRequest) { r.Date = "03/02/2026" }, ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest()
			tt.mutate(req)
			_, err := svc.Book(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookUnknownPractitioner(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validBookingRequest()
	req.PractitionerID = "8b1d8df2-0000-0000-0000-000000000000"

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
}

func TestBookSlotConflict(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	req := validBookingRequest()
	req.SlotLabel = "10:30 AM"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// A differently written label for the same slot still conflicts.
	req = validBookingRequest()
	req.SlotLabel = "10:30 am"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookConcurrentSameSlot(t *testing.T) {
	svc, _, _ := newTestService(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), validBookingRequest())
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrSlotUnavailable):
			conflict++
		}
	}
	assert.Equal(t, 1, ok, "exactly one booking should land")
	assert.Equal(t, 1, conflict, "the other must observe the conflict")
}

func TestBookWithQuestionnaire(t *testing.T) {
	svc, repo, _ := newTestService(t)

	req := validBookingRequest()
	req.Questionnaire = &TriageIntake{Responses: triage.Responses{
		Symptoms:       triage.Symptoms{Vomiting: true, Diarrhea: true},
		Duration:       triage.Duration{SymptomsStarted: "2 days ago", GettingWorse: true},
		MedicalHistory: triage.MedicalHistory{Vaccinated: true},
	}}

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, appt.QuestionnaireID)

	q := repo.questionnaires[appt.QuestionnaireID]
	require.NotNil(t, q)
	assert.Equal(t, appt.ID, q.AppointmentID)
	assert.Equal(t, triage.UrgencyHigh, q.Urgency)
	assert.Contains(t, q.Summary, "Pet: Biscuit (dog, beagle, 4 years old)")
}

func TestCancelHappyPath(t *testing.T) {
	svc, _, notifier := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, testCustomerID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, []string{appt.ID}, notifier.cancelled)
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	require.NoError(t, err)

	rebooked, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)
	assert.NotEqual(t, appt.ID, rebooked.ID)
	assert.Equal(t, appt.SlotMinute, rebooked.SlotMinute)
}

func TestCancelAuthorization(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	// The practitioner is not the owner; authorization is checked before
	// state, so this is Forbidden even though the appointment is scheduled.
	_, err = svc.Cancel(context.Background(), appt.ID, testPractitionerID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelPastAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validBookingRequest()
	req.Date = "2026-02-27" // before the frozen clock's day
	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelSameDayAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validBookingRequest()
	req.Date = "2026-03-01" // the frozen clock's own day
	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	assert.NoError(t, err)
}

func TestCompleteCashSettlement(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), appt.ID, testPractitionerID, CompleteRequest{
		Notes:           "mild sprain, rest for a week",
		PaymentReceived: true,
		AmountCents:     450000,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, PaymentCompleted, done.PaymentStatus)
	assert.Equal(t, int64(450000), done.Payment.AmountCents)
	require.NotNil(t, done.Payment.PaidAt)
	assert.Equal(t, "mild sprain, rest for a week", done.Notes)
}

func TestCompleteWithoutCashReceived(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), appt.ID, testPractitionerID, CompleteRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, PaymentPending, done.PaymentStatus)
}

func TestCompleteAuthorization(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), appt.ID, testCustomerID, CompleteRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCompleteCancelledAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, testCustomerID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), appt.ID, testPractitionerID, CompleteRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetVisibleToBothParties(t *testing.T) {
	svc, _, _ := newTestService(t)

	appt, err := svc.Book(context.Background(), validBookingRequest())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), appt.ID, testCustomerID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), appt.ID, testPractitionerID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), appt.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)
}
