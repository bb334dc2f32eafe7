package pricing

import (
	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

// RefundQuote результат расчёта возврата при отмене
type RefundQuote struct {
	Percent  float64
	Amount   float64
	Eligible bool
}

// Refund вычисляет возврат при отмене бронирования.
//
// Процент определяется количеством часов до начала (hoursUntilStart) по
// условиям поля (или стандартным, если поле их не переопределяет): выбирается
// tier с наибольшим порогом MinHoursBefore, который ещё удовлетворён.
// Возврат считается от фактически оплаченной суммы, а не от стоимости
// бронирования, и никогда её не превышает
func Refund(field *domain.Field, paidAmount float64, hoursUntilStart float64) RefundQuote {
	percent := refundPercent(field.RefundTiers(), hoursUntilStart)

	amount := roundMoney(paidAmount * percent / 100)
	if amount > paidAmount {
		amount = paidAmount
	}
	if amount < 0 {
		amount = 0
	}

	return RefundQuote{
		Percent:  percent,
		Amount:   amount,
		Eligible: amount > 0,
	}
}

func refundPercent(tiers []domain.RefundTier, hoursUntilStart float64) float64 {
	bestThreshold := -1.0
	percent := 0.0

	for _, tier := range tiers {
		if hoursUntilStart >= tier.MinHoursBefore && tier.MinHoursBefore > bestThreshold {
			bestThreshold = tier.MinHoursBefore
			percent = tier.Percent
		}
	}

	return percent
}
