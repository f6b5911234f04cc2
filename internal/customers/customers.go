// Package customers holds the pet-owner records that appointments reference.
package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
)

// ErrCustomerNotFound is returned when a customer is not found
var ErrCustomerNotFound = errors.New("customers: customer not found")

// Customer is a registered pet owner.
type Customer struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository defines customer storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
}

// PostgresRepository stores customers in the relational database.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	if db == nil {
		panic("customers: db required")
	}
	return &PostgresRepository{db: db}
}

// GetByID fetches a customer.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	query := `
		SELECT id, email, full_name, contact_number, created_at
		FROM customers
		WHERE id = $1
	`
	var c Customer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Email,
		&c.FullName,
		&c.ContactNumber,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select by id: %w", err)
	}
	return &c, nil
}
