package pricing

import (
	"math"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

// Quote вычисляет стоимость бронирования на момент создания.
// Результат фиксируется в бронировании и больше не пересчитывается
//
// Базовая стоимость = почасовая ставка * длительность, при этом минуты,
// попадающие в пиковые окна, тарифицируются по пиковой ставке
// (окно, частично пересекающее пик, делится пропорционально).
// Затем применяется одна лучшая групповая скидка - скидки не суммируются
func Quote(field *domain.Field, window domain.Window, participants int) domain.PricingDetails {
	base := baseAmount(field, window)

	discountPercent := bestDiscountPercent(field.Pricing.GroupDiscounts, participants)
	discountAmount := roundMoney(base * discountPercent / 100)

	currency := field.Pricing.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	return domain.PricingDetails{
		BaseAmount:      roundMoney(base),
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TotalAmount:     roundMoney(base - discountAmount),
		Currency:        currency,
	}
}

// baseAmount считает стоимость окна с разбивкой на пиковые и обычные минуты
func baseAmount(field *domain.Field, window domain.Window) float64 {
	totalMinutes := window.Minutes()

	peakMinutes := 0
	if field.Pricing.PeakHourlyRate != nil {
		peakMinutes = peakOverlapMinutes(window, field.Pricing.PeakWindows)
	}
	offPeakMinutes := totalMinutes - peakMinutes

	amount := float64(offPeakMinutes) / 60 * field.Pricing.HourlyRate
	if peakMinutes > 0 {
		amount += float64(peakMinutes) / 60 * *field.Pricing.PeakHourlyRate
	}
	return amount
}

// peakOverlapMinutes возвращает количество минут окна, попадающих в пиковые интервалы
// Пиковые окна заданы временем суток и не пересекаются между собой
func peakOverlapMinutes(window domain.Window, peaks []domain.PeakWindow) int {
	startMin, err := types.NewTimeString(window.Start).Minutes()
	if err != nil {
		return 0
	}
	endMin := startMin + window.Minutes()

	total := 0
	for _, peak := range peaks {
		peakStart, err := peak.Start.Minutes()
		if err != nil {
			continue
		}
		peakEnd, err := peak.End.Minutes()
		if err != nil {
			continue
		}

		overlapStart := max(startMin, peakStart)
		overlapEnd := min(endMin, peakEnd)
		if overlapEnd > overlapStart {
			total += overlapEnd - overlapStart
		}
	}
	return total
}

// bestDiscountPercent выбирает одну лучшую подходящую скидку
func bestDiscountPercent(tiers []domain.GroupDiscount, participants int) float64 {
	best := 0.0
	for _, tier := range tiers {
		if participants >= tier.MinPlayers && tier.Percent > best {
			best = tier.Percent
		}
	}
	return best
}

// roundMoney округляет сумму до копеек
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
