package payments

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Receipt is the result of a successful mock charge.
type Receipt struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

// SettlementStore records payment outcomes on the appointment row.
type SettlementStore interface {
	MarkCardPaid(ctx context.Context, appointmentID, customerID, transactionID string, amountCents int64) error
	SelectCash(ctx context.Context, appointmentID, customerID string) error
}

// Service is the mock card gateway. It simulates a processor with a
// configurable decline rate and records settlements against appointments.
type Service struct {
	cards       CardStore
	settlements SettlementStore
	declineRate float64
	currency    string
	logger      *logging.Logger
	roll        func() float64
	now         func() time.Time
}

// NewService constructs the payments service. declineRate is the fraction of
// charges randomly declined (0 disables declines).
func NewService(cards CardStore, settlements SettlementStore, declineRate float64, currency string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if currency == "" {
		currency = "LKR"
	}
	return &Service{
		cards:       cards,
		settlements: settlements,
		declineRate: declineRate,
		currency:    currency,
		logger:      logger,
		roll:        secureRoll,
		now:         time.Now,
	}
}

// Cards exposes the underlying card store.
func (s *Service) Cards() CardStore {
	return s.cards
}

// Charge runs a mock card charge for an appointment. On success the
// appointment's payment is marked completed with the generated transaction id.
func (s *Service) Charge(ctx context.Context, customerID, appointmentID string, amountCents int64) (*Receipt, error) {
	if s.declineRate > 0 && s.roll() < s.declineRate {
		s.logger.Info("mock charge declined", "customer_id", customerID, "appointment_id", appointmentID)
		return nil, ErrPaymentDeclined
	}

	receipt := &Receipt{
		TransactionID: s.newTransactionID(),
		AmountCents:   amountCents,
		Currency:      s.currency,
		Status:        "completed",
	}

	if appointmentID != "" && s.settlements != nil {
		if err := s.settlements.MarkCardPaid(ctx, appointmentID, customerID, receipt.TransactionID, amountCents); err != nil {
			return nil, err
		}
	}

	s.logger.Info("mock charge completed",
		"transaction_id", receipt.TransactionID,
		"customer_id", customerID,
		"amount_cents", amountCents,
	)
	return receipt, nil
}

// ChooseCash flags an appointment for settlement at the clinic desk.
func (s *Service) ChooseCash(ctx context.Context, customerID, appointmentID string) error {
	if s.settlements == nil {
		return fmt.Errorf("payments: settlement store not configured")
	}
	return s.settlements.SelectCash(ctx, appointmentID, customerID)
}

func (s *Service) newTransactionID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	var b strings.Builder
	fmt.Fprintf(&b, "TXN_%d_", s.now().UnixMilli())
	var buf [9]byte
	_, _ = rand.Read(buf[:])
	for _, c := range buf {
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String()
}

// secureRoll returns a uniform float in [0, 1).
func secureRoll() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1 // never decline if entropy is unavailable
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / float64(1<<53)
}

// PostgresSettlementStore updates payment fields on appointment rows.
type PostgresSettlementStore struct {
	db postgres.DBTX
}

// NewPostgresSettlementStore initializes a store backed by pgxpool.
func NewPostgresSettlementStore(db postgres.DBTX) *PostgresSettlementStore {
	if db == nil {
		panic("payments: db required")
	}
	return &PostgresSettlementStore{db: db}
}

// MarkCardPaid records a completed card settlement on the appointment.
func (s *PostgresSettlementStore) MarkCardPaid(ctx context.Context, appointmentID, customerID, transactionID string, amountCents int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET payment_status = 'completed',
			payment_txn_id = $3,
			payment_amount_cents = $4,
			paid_at = now(),
			updated_at = now()
		WHERE id = $1 AND customer_id = $2 AND payment_method = 'card'
	`, appointmentID, customerID, transactionID, amountCents)
	if err != nil {
		return fmt.Errorf("payments: mark card paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotEligible
	}
	return nil
}

// SelectCash switches the appointment to pay-at-clinic.
func (s *PostgresSettlementStore) SelectCash(ctx context.Context, appointmentID, customerID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET payment_method = 'cash',
			payment_status = 'pending',
			updated_at = now()
		WHERE id = $1 AND customer_id = $2
	`, appointmentID, customerID)
	if err != nil {
		return fmt.Errorf("payments: select cash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotEligible
	}
	return nil
}
