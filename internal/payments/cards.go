// Package payments provides saved-card management and the mock card gateway
// used for demo checkout. Card storage lives behind an injected store, never
// a process-global.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
)

var (
	// ErrCardNotFound is returned when a saved card is not found
	ErrCardNotFound = errors.New("payments: card not found")

	// ErrDuplicateCard is returned when the same card is saved twice
	ErrDuplicateCard = errors.New("payments: this card is already saved")

	// ErrPaymentDeclined is returned when the mock gateway declines a charge
	ErrPaymentDeclined = errors.New("payments: payment declined")

	// ErrAppointmentNotEligible is returned when a settlement targets an
	// appointment that does not exist, belongs to someone else, or has the
	// wrong payment method
	ErrAppointmentNotEligible = errors.New("payments: appointment not eligible for this settlement")
)

// SavedCard is a customer's stored payment card. Only non-sensitive display
// fields are kept.
type SavedCard struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	CardholderName string    `json:"cardholder_name"`
	CardType       string    `json:"card_type"`
	LastFour       string    `json:"last_four"`
	ExpiryDate     string    `json:"expiry_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaveCardRequest is the payload for storing a card.
type SaveCardRequest struct {
	CardholderName string `json:"cardholder_name"`
	CardType       string `json:"card_type"`
	LastFour       string `json:"last_four"`
	ExpiryDate     string `json:"expiry_date"`
}

// CardStore defines saved-card persistence.
type CardStore interface {
	ListForCustomer(ctx context.Context, customerID string) ([]*SavedCard, error)
	Save(ctx context.Context, customerID string, req SaveCardRequest) (*SavedCard, error)
	Delete(ctx context.Context, customerID, cardID string) error
}

// PostgresCardStore stores saved cards in the relational database.
type PostgresCardStore struct {
	db postgres.DBTX
}

// NewPostgresCardStore initializes a store backed by pgxpool.
func NewPostgresCardStore(db postgres.DBTX) *PostgresCardStore {
	if db == nil {
		panic("payments: db required")
	}
	return &PostgresCardStore{db: db}
}

// ListForCustomer returns the customer's active cards, oldest first.
func (s *PostgresCardStore) ListForCustomer(ctx context.Context, customerID string) ([]*SavedCard, error) {
	query := `
		SELECT id, customer_id, cardholder_name, card_type, last_four, expiry_date, created_at
		FROM saved_cards
		WHERE customer_id = $1 AND active
		ORDER BY created_at
	`
	rows, err := s.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("payments: select cards: %w", err)
	}
	defer rows.Close()

	var out []*SavedCard
	for rows.Next() {
		var c SavedCard
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.CardholderName, &c.CardType, &c.LastFour, &c.ExpiryDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments: scan card: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments: iterate cards: %w", err)
	}
	return out, nil
}

// Save stores a new card after rejecting duplicates on (last four, expiry).
func (s *PostgresCardStore) Save(ctx context.Context, customerID string, req SaveCardRequest) (*SavedCard, error) {
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM saved_cards
			WHERE customer_id = $1 AND last_four = $2 AND expiry_date = $3 AND active
		)`,
		customerID, req.LastFour, req.ExpiryDate,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("payments: check duplicate: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCard
	}

	cardType := req.CardType
	if cardType == "" {
		cardType = "unknown"
	}

	card := &SavedCard{
		ID:             uuid.New().String(),
		CustomerID:     customerID,
		CardholderName: req.CardholderName,
		CardType:       cardType,
		LastFour:       req.LastFour,
		ExpiryDate:     req.ExpiryDate,
	}
	if err := s.db.QueryRow(ctx,
		`INSERT INTO saved_cards (id, customer_id, cardholder_name, card_type, last_four, expiry_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		card.ID, card.CustomerID, card.CardholderName, card.CardType, card.LastFour, card.ExpiryDate,
	).Scan(&card.CreatedAt); err != nil {
		return nil, fmt.Errorf("payments: insert card: %w", err)
	}
	return card, nil
}

// Delete soft-deletes a card; it stays on file but stops listing.
func (s *PostgresCardStore) Delete(ctx context.Context, customerID, cardID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE saved_cards SET active = false WHERE id = $1 AND customer_id = $2 AND active`,
		cardID, customerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCardNotFound
		}
		return fmt.Errorf("payments: deactivate card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}
