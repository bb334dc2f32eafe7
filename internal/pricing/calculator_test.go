package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/ptr"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

func pricedField() *domain.Field {
	return &domain.Field{
		ID: 7,
		Pricing: domain.FieldPricing{
			HourlyRate: 2000,
			Currency:   "RUB",
		},
	}
}

func windowAt(startHour, startMin, endHour, endMin int) domain.Window {
	return domain.Window{
		Start: time.Date(2025, 6, 11, startHour, startMin, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 11, endHour, endMin, 0, 0, time.UTC),
	}
}

func TestQuote_BaseRate(t *testing.T) {
	quote := Quote(pricedField(), windowAt(10, 0, 11, 0), 1)

	assert.Equal(t, 2000.0, quote.BaseAmount)
	assert.Equal(t, 0.0, quote.DiscountPercent)
	assert.Equal(t, 2000.0, quote.TotalAmount)
	assert.Equal(t, "RUB", quote.Currency)
}

func TestQuote_FractionalHours(t *testing.T) {
	quote := Quote(pricedField(), windowAt(10, 0, 11, 30), 1)

	assert.Equal(t, 3000.0, quote.BaseAmount)
}

func TestQuote_PeakRate(t *testing.T) {
	field := pricedField()
	field.Pricing.PeakHourlyRate = ptr.Ptr(3000.0)
	field.Pricing.PeakWindows = []domain.PeakWindow{
		{Start: types.TimeString("18:00"), End: types.TimeString("22:00")},
	}

	t.Run("окно целиком в пике", func(t *testing.T) {
		quote := Quote(field, windowAt(18, 0, 19, 0), 1)
		assert.Equal(t, 3000.0, quote.BaseAmount)
	})

	t.Run("окно целиком вне пика", func(t *testing.T) {
		quote := Quote(field, windowAt(10, 0, 11, 0), 1)
		assert.Equal(t, 2000.0, quote.BaseAmount)
	})

	t.Run("окно пересекает границу пика", func(t *testing.T) {
		// 17:00-19:00: час по 2000 + час по 3000
		quote := Quote(field, windowAt(17, 0, 19, 0), 1)
		assert.Equal(t, 5000.0, quote.BaseAmount)
	})

	t.Run("частичное попадание в пик", func(t *testing.T) {
		// 17:30-18:30: 30 минут по 2000 + 30 минут по 3000
		quote := Quote(field, windowAt(17, 30, 18, 30), 1)
		assert.Equal(t, 2500.0, quote.BaseAmount)
	})
}

func TestQuote_GroupDiscounts(t *testing.T) {
	field := pricedField()
	field.Pricing.GroupDiscounts = []domain.GroupDiscount{
		{MinPlayers: 10, Percent: 10},
		{MinPlayers: 20, Percent: 20},
	}

	t.Run("скидка не применяется для малой группы", func(t *testing.T) {
		quote := Quote(field, windowAt(10, 0, 11, 0), 5)
		assert.Equal(t, 0.0, quote.DiscountPercent)
		assert.Equal(t, 2000.0, quote.TotalAmount)
	})

	t.Run("применяется подходящий tier", func(t *testing.T) {
		quote := Quote(field, windowAt(10, 0, 11, 0), 12)
		assert.Equal(t, 10.0, quote.DiscountPercent)
		assert.Equal(t, 200.0, quote.DiscountAmount)
		assert.Equal(t, 1800.0, quote.TotalAmount)
	})

	t.Run("выбирается лучший tier без суммирования", func(t *testing.T) {
		quote := Quote(field, windowAt(10, 0, 11, 0), 25)
		assert.Equal(t, 20.0, quote.DiscountPercent)
		assert.Equal(t, 1600.0, quote.TotalAmount)
	})
}

func TestQuote_DefaultCurrency(t *testing.T) {
	field := pricedField()
	field.Pricing.Currency = ""

	quote := Quote(field, windowAt(10, 0, 11, 0), 1)
	assert.Equal(t, domain.DefaultCurrency, quote.Currency)
}
