package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

func TestRefund_DefaultTiers(t *testing.T) {
	field := &domain.Field{ID: 7}
	paid := 2000.0

	tests := []struct {
		name            string
		hoursUntilStart float64
		expectedPercent float64
		expectedAmount  float64
	}{
		{"за 48 часов - полный возврат", 48, 100, 2000},
		{"ровно за 24 часа - полный возврат", 24, 100, 2000},
		{"за 18 часов - половина", 18, 50, 1000},
		{"ровно за 12 часов - половина", 12, 50, 1000},
		{"за 6 часов - без возврата", 6, 0, 0},
		{"после начала - без возврата", -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := Refund(field, paid, tt.hoursUntilStart)

			assert.Equal(t, tt.expectedPercent, quote.Percent)
			assert.Equal(t, tt.expectedAmount, quote.Amount)
			assert.Equal(t, tt.expectedAmount > 0, quote.Eligible)
		})
	}
}

func TestRefund_FieldPolicyOverride(t *testing.T) {
	field := &domain.Field{
		ID: 7,
		CancellationPolicy: domain.CancellationPolicy{
			RefundTiers: []domain.RefundTier{
				{MinHoursBefore: 48, Percent: 100},
				{MinHoursBefore: 0, Percent: 25},
			},
		},
	}

	quote := Refund(field, 2000, 24)
	assert.Equal(t, 25.0, quote.Percent)
	assert.Equal(t, 500.0, quote.Amount)

	quote = Refund(field, 2000, 72)
	assert.Equal(t, 100.0, quote.Percent)
	assert.Equal(t, 2000.0, quote.Amount)
}

func TestRefund_FromPaidAmountNotTotal(t *testing.T) {
	field := &domain.Field{ID: 7}

	// Оплачена только половина стоимости - возврат считается от оплаченного
	quote := Refund(field, 1000, 48)
	assert.Equal(t, 1000.0, quote.Amount)

	// Ничего не оплачено - возвращать нечего
	quote = Refund(field, 0, 48)
	assert.Equal(t, 0.0, quote.Amount)
	assert.False(t, quote.Eligible)
}

func TestRefund_MonotonicInHours(t *testing.T) {
	field := &domain.Field{ID: 7}
	paid := 2000.0

	// Чем раньше отмена, тем не меньше возврат
	prev := -1.0
	for _, hours := range []float64{-5, 0, 6, 12, 18, 24, 48, 100} {
		amount := Refund(field, paid, hours).Amount
		assert.GreaterOrEqual(t, amount, prev, "refund must not decrease as hours grow (hours=%v)", hours)
		prev = amount
	}
}
