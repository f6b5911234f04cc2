package practitioners

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
	"github.com/brightpaw/vetclinic-platform/internal/schedule"
)

// Repository defines practitioner directory storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Practitioner, error)
	List(ctx context.Context, filter ListFilter) ([]*Practitioner, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// PostgresRepository stores practitioners in the relational database.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	if db == nil {
		panic("practitioners: db required")
	}
	return &PostgresRepository{db: db}
}

const practitionerColumns = `
	id, email, full_name, specialization, experience_years, qualifications,
	contact_number, clinic_street, clinic_city, clinic_location,
	work_start, work_end, slot_duration, consultation_fee_cents, active, created_at`

// GetByID fetches a practitioner.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	row := r.db.QueryRow(ctx, `SELECT `+practitionerColumns+` FROM practitioners WHERE id = $1`, id)
	p, err := scanPractitioner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		return nil, fmt.Errorf("practitioners: select by id: %w", err)
	}
	return p, nil
}

// List returns active practitioners matching the filter, ordered by name.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Practitioner, error) {
	query := `
		SELECT ` + practitionerColumns + `
		FROM practitioners
		WHERE active
		  AND ($1 = '' OR clinic_location = $1)
		  AND ($2 = '' OR specialization = $2)
		ORDER BY full_name
	`
	rows, err := r.db.Query(ctx, query, filter.Location, filter.Specialization)
	if err != nil {
		return nil, fmt.Errorf("practitioners: select list: %w", err)
	}
	defer rows.Close()

	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, fmt.Errorf("practitioners: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("practitioners: iterate rows: %w", err)
	}
	return out, nil
}

// SetActive flips the directory listing flag.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE practitioners SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("practitioners: update active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPractitionerNotFound
	}
	return nil
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var (
		p            Practitioner
		workStart    *string
		workEnd      *string
		slotDuration *int
	)
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Specialization,
		&p.ExperienceYears,
		&p.Qualifications,
		&p.ContactNumber,
		&p.ClinicAddress.Street,
		&p.ClinicAddress.City,
		&p.ClinicAddress.Location,
		&workStart,
		&workEnd,
		&slotDuration,
		&p.FeeCents,
		&p.Active,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if workStart != nil && workEnd != nil {
		wh := schedule.WorkingHours{StartTime: *workStart, EndTime: *workEnd}
		if slotDuration != nil {
			wh.SlotDuration = *slotDuration
		}
		p.WorkingHours = &wh
	}
	return &p, nil
}
