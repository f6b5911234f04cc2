package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
)

// SlotConstraint is the partial unique index guarding the
// (practitioner, date, slot) key space among non-cancelled appointments.
// The booking commit relies on it rather than on check-then-insert.
const SlotConstraint = "appointments_active_slot_key"

// Repository defines appointment storage.
type Repository interface {
	CreateBooking(ctx context.Context, appt *Appointment, q *triage.Questionnaire) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListForPractitionerDay(ctx context.Context, practitionerID string, day time.Time) ([]*Appointment, error)
	ListForCustomer(ctx context.Context, customerID string) ([]*Appointment, error)
	ListForPractitioner(ctx context.Context, practitionerID string) ([]*Appointment, error)
	Cancel(ctx context.Context, appt *Appointment) error
	Complete(ctx context.Context, appt *Appointment) error
}

// PostgresRepository stores appointments and their ownership indices.
type PostgresRepository struct {
	pool           postgres.Pool
	questionnaires triage.Repository
}

// NewPostgresRepository initializes a repo backed by pgxpool. The triage
// repository is used to persist questionnaires inside the booking transaction.
func NewPostgresRepository(pool postgres.Pool, questionnaires triage.Repository) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool, questionnaires: questionnaires}
}

const appointmentColumns = `
	id, booking_code, customer_id, practitioner_id, pet,
	appointment_date, slot_minute, slot_label, reason, status,
	payment_method, payment_status, payment_txn_id, payment_amount_cents, paid_at,
	COALESCE(questionnaire_id::text, ''), COALESCE(notes, ''), created_at, updated_at`

// CreateBooking commits a new appointment, its optional questionnaire, and
// both ownership index rows as one transaction. A conflicting concurrent
// booking surfaces as ErrSlotUnavailable when the partial unique index
// rejects the insert; nothing is left behind in that case.
func (r *PostgresRepository) CreateBooking(ctx context.Context, appt *Appointment, q *triage.Questionnaire) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	petJSON, err := json.Marshal(appt.Pet)
	if err != nil {
		return fmt.Errorf("appointments: marshal pet: %w", err)
	}

	insert := `
		INSERT INTO appointments
			(id, booking_code, customer_id, practitioner_id, pet,
			 appointment_date, slot_minute, slot_label, reason, status,
			 payment_method, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insert,
		appt.ID,
		appt.BookingCode,
		appt.CustomerID,
		appt.PractitionerID,
		petJSON,
		appt.Date,
		appt.SlotMinute,
		appt.SlotLabel,
		appt.Reason,
		string(appt.Status),
		string(appt.PaymentMethod),
		string(appt.PaymentStatus),
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		if postgres.UniqueViolation(err, SlotConstraint) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("appointments: insert appointment: %w", err)
	}

	if q != nil {
		q.AppointmentID = appt.ID
		if err := r.questionnaires.Create(ctx, tx, q); err != nil {
			return fmt.Errorf("appointments: persist questionnaire: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE appointments SET questionnaire_id = $2 WHERE id = $1`,
			appt.ID, q.ID,
		); err != nil {
			return fmt.Errorf("appointments: link questionnaire: %w", err)
		}
		appt.QuestionnaireID = q.ID
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO practitioner_appointments (practitioner_id, appointment_id) VALUES ($1, $2)`,
		appt.PractitionerID, appt.ID,
	); err != nil {
		return fmt.Errorf("appointments: index for practitioner: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO customer_bookings (customer_id, appointment_id) VALUES ($1, $2)`,
		appt.CustomerID, appt.ID,
	); err != nil {
		return fmt.Errorf("appointments: index for customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if postgres.UniqueViolation(err, SlotConstraint) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("appointments: commit booking: %w", err)
	}
	return nil
}

// GetByID fetches an appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select by id: %w", err)
	}
	return appt, nil
}

// ListForPractitionerDay returns the practitioner's non-cancelled
// appointments whose date falls on the given calendar day, ordered by slot.
func (r *PostgresRepository) ListForPractitionerDay(ctx context.Context, practitionerID string, day time.Time) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE practitioner_id = $1
		  AND appointment_date = $2
		  AND status <> 'cancelled'
		ORDER BY slot_minute
	`
	rows, err := r.pool.Query(ctx, query, practitionerID, day)
	if err != nil {
		return nil, fmt.Errorf("appointments: select day: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListForCustomer returns a customer's booking history, newest first.
func (r *PostgresRepository) ListForCustomer(ctx context.Context, customerID string) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE customer_id = $1
		ORDER BY appointment_date DESC, slot_minute DESC
	`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("appointments: select for customer: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListForPractitioner returns every appointment still referenced by the
// practitioner's index, soonest first.
func (r *PostgresRepository) ListForPractitioner(ctx context.Context, practitionerID string) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN practitioner_appointments pa ON pa.appointment_id = a.id
		WHERE pa.practitioner_id = $1
		ORDER BY a.appointment_date, a.slot_minute
	`
	rows, err := r.pool.Query(ctx, query, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("appointments: select for practitioner: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// Cancel marks the appointment cancelled and drops it from the
// practitioner's index, keeping that index to live and completed bookings.
func (r *PostgresRepository) Cancel(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx,
		`UPDATE appointments SET status = 'cancelled', updated_at = now() WHERE id = $1 RETURNING updated_at`,
		appt.ID,
	).Scan(&appt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: mark cancelled: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM practitioner_appointments WHERE appointment_id = $1`,
		appt.ID,
	); err != nil {
		return fmt.Errorf("appointments: unindex for practitioner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit cancel: %w", err)
	}
	appt.Status = StatusCancelled
	return nil
}

// Complete persists the completed status along with visit notes and any cash
// settlement recorded by the practitioner.
func (r *PostgresRepository) Complete(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments
		SET status = 'completed',
			notes = $2,
			payment_status = $3,
			payment_txn_id = $4,
			payment_amount_cents = $5,
			paid_at = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		appt.ID,
		appt.Notes,
		string(appt.PaymentStatus),
		appt.Payment.TransactionID,
		appt.Payment.AmountCents,
		appt.Payment.PaidAt,
	).Scan(&appt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: mark completed: %w", err)
	}
	appt.Status = StatusCompleted
	return nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		appt    Appointment
		petJSON []byte
		status  string
		method  string
		payStat string
		txnID   *string
		amount  *int64
	)
	if err := row.Scan(
		&appt.ID,
		&appt.BookingCode,
		&appt.CustomerID,
		&appt.PractitionerID,
		&petJSON,
		&appt.Date,
		&appt.SlotMinute,
		&appt.SlotLabel,
		&appt.Reason,
		&status,
		&method,
		&payStat,
		&txnID,
		&amount,
		&appt.Payment.PaidAt,
		&appt.QuestionnaireID,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(petJSON, &appt.Pet); err != nil {
		return nil, fmt.Errorf("decode pet: %w", err)
	}
	appt.Status = Status(status)
	appt.PaymentMethod = PaymentMethod(method)
	appt.PaymentStatus = PaymentStatus(payStat)
	if txnID != nil {
		appt.Payment.TransactionID = *txnID
	}
	if amount != nil {
		appt.Payment.AmountCents = *amount
	}
	return &appt, nil
}
