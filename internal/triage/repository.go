package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
)

// Repository defines questionnaire storage.
type Repository interface {
	Create(ctx context.Context, db postgres.DBTX, q *Questionnaire) error
	GetByID(ctx context.Context, id string) (*Questionnaire, error)
	GetByAppointment(ctx context.Context, appointmentID string) (*Questionnaire, error)
}

// PostgresRepository stores questionnaires in the relational database. The
// structured pet snapshot and responses are kept as jsonb documents.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	if db == nil {
		panic("triage: db required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a questionnaire row. The booking transaction passes its own
// pgx.Tx so the questionnaire commits atomically with the appointment.
func (r *PostgresRepository) Create(ctx context.Context, db postgres.DBTX, q *Questionnaire) error {
	if db == nil {
		db = r.db
	}

	petJSON, err := json.Marshal(q.PetInfo)
	if err != nil {
		return fmt.Errorf("triage: marshal pet info: %w", err)
	}
	responsesJSON, err := json.Marshal(q.Responses)
	if err != nil {
		return fmt.Errorf("triage: marshal responses: %w", err)
	}

	query := `
		INSERT INTO questionnaires (id, appointment_id, customer_id, practitioner_id, pet_info, responses, summary, urgency_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING submitted_at
	`
	if err := db.QueryRow(ctx, query,
		q.ID,
		q.AppointmentID,
		q.CustomerID,
		q.PractitionerID,
		petJSON,
		responsesJSON,
		q.Summary,
		string(q.Urgency),
	).Scan(&q.SubmittedAt); err != nil {
		return fmt.Errorf("triage: insert questionnaire: %w", err)
	}
	return nil
}

// GetByID fetches a questionnaire by its own identity.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Questionnaire, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetByAppointment fetches the questionnaire attached to an appointment.
func (r *PostgresRepository) GetByAppointment(ctx context.Context, appointmentID string) (*Questionnaire, error) {
	return r.get(ctx, `WHERE appointment_id = $1`, appointmentID)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*Questionnaire, error) {
	query := `
		SELECT id, appointment_id, customer_id, practitioner_id, pet_info, responses, summary, urgency_level, submitted_at
		FROM questionnaires
	` + where

	var (
		q             Questionnaire
		petJSON       []byte
		responsesJSON []byte
		urgency       string
	)
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&q.ID,
		&q.AppointmentID,
		&q.CustomerID,
		&q.PractitionerID,
		&petJSON,
		&responsesJSON,
		&q.Summary,
		&urgency,
		&q.SubmittedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("triage: select questionnaire: %w", err)
	}

	if err := json.Unmarshal(petJSON, &q.PetInfo); err != nil {
		return nil, fmt.Errorf("triage: decode pet info: %w", err)
	}
	if err := json.Unmarshal(responsesJSON, &q.Responses); err != nil {
		return nil, fmt.Errorf("triage: decode responses: %w", err)
	}
	q.Urgency = Urgency(urgency)
	return &q, nil
}
