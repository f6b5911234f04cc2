package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlements struct {
	cardPaid []string
	cash     []string
	err      error
}

func (f *fakeSettlements) MarkCardPaid(_ context.Context, appointmentID, _, _ string, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.cardPaid = append(f.cardPaid, appointmentID)
	return nil
}

func (f *fakeSettlements) SelectCash(_ context.Context, appointmentID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.cash = append(f.cash, appointmentID)
	return nil
}

func TestChargeSuccess(t *testing.T) {
	settlements := &fakeSettlements{}
	svc := NewService(nil, settlements, 0, "LKR", nil)
	svc.now = func() time.Time { return time.UnixMilli(1756380000000) }

	receipt, err := svc.Charge(context.Background(), "cust-1", "appt-1", 350000)
	require.NoError(t, err)

	assert.Regexp(t, `^TXN_1756380000000_[a-z0-9]{9}$`, receipt.TransactionID)
	assert.Equal(t, int64(350000), receipt.AmountCents)
	assert.Equal(t, "LKR", receipt.Currency)
	assert.Equal(t, "completed", receipt.Status)
	assert.Equal(t, []string{"appt-1"}, settlements.cardPaid)
}

func TestChargeDeclined(t *testing.T) {
	settlements := &fakeSettlements{}
	svc := NewService(nil, settlements, 0.1, "LKR", nil)
	svc.roll = func() float64 { return 0.05 } // below the decline threshold

	_, err := svc.Charge(context.Background(), "cust-1", "appt-1", 350000)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Empty(t, settlements.cardPaid)
}

func TestChargeZeroDeclineRateNeverDeclines(t *testing.T) {
	svc := NewService(nil, &fakeSettlements{}, 0, "LKR", nil)
	svc.roll = func() float64 { return 0 }

	_, err := svc.Charge(context.Background(), "cust-1", "appt-1", 100)
	assert.NoError(t, err)
}

func TestChargeIneligibleAppointment(t *testing.T) {
	settlements := &fakeSettlements{err: ErrAppointmentNotEligible}
	svc := NewService(nil, settlements, 0, "LKR", nil)

	_, err := svc.Charge(context.Background(), "cust-1", "appt-1", 100)
	assert.ErrorIs(t, err, ErrAppointmentNotEligible)
}

func TestChooseCash(t *testing.T) {
	settlements := &fakeSettlements{}
	svc := NewService(nil, settlements, 0, "LKR", nil)

	require.NoError(t, svc.ChooseCash(context.Background(), "cust-1", "appt-1"))
	assert.Equal(t, []string{"appt-1"}, settlements.cash)
}

func TestSecureRollRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := secureRoll()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
