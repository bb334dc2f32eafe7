package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

// generateTimeSlots генерирует сетку слотов на день по расписанию поля
// Слоты идут с шагом duration от открытия до закрытия; слоты, попадающие
// на технические перерывы, исключаются. Для сегодняшней даты слоты,
// начинающиеся раньше текущего времени, отбрасываются
func generateTimeSlots(
	day domain.DaySchedule,
	duration int,
	requestDate time.Time,
	now time.Time,
) ([]types.TimeString, error) {
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	openTime := *day.OpenTime
	closeTime := *day.CloseTime

	allSlots := make([]types.TimeString, 0)
	currentSlot := openTime

	for currentSlot.IsBefore(closeTime) {
		slotEnd, err := currentSlot.AddMinutes(duration)
		if err != nil {
			break // Слот уходит за полночь
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		if !overlapsBreak(currentSlot, slotEnd, day.Breaks) {
			allSlots = append(allSlots, currentSlot)
		}

		currentSlot, err = currentSlot.AddMinutes(duration)
		if err != nil {
			break
		}
	}

	// На будущие даты подходят все слоты
	if !isSameDay(requestDate, now) {
		return allSlots, nil
	}

	// Сегодня: отбрасываем слоты, которые уже начались
	currentTime := types.NewTimeString(now)
	availableSlots := make([]types.TimeString, 0)
	for _, slot := range allSlots {
		if !slot.IsBefore(currentTime) {
			availableSlots = append(availableSlots, slot)
		}
	}

	return availableSlots, nil
}

// overlapsBreak проверяет пересечение слота с техническим перерывом
// Граничные случаи пересечением не считаются: слот может заканчиваться
// ровно в начале перерыва
func overlapsBreak(slotStart, slotEnd types.TimeString, breaks []domain.BreakInterval) bool {
	for _, br := range breaks {
		if br.Start.IsBefore(slotEnd) && br.End.IsAfter(slotStart) {
			return true
		}
	}
	return false
}

// markAvailability размечает занятость слотов по активным бронированиям
// Пересечение считается по полуоткрытым интервалам: бронирование, которое
// заканчивается ровно в начале слота, его не занимает
func markAvailability(
	slots []types.TimeString,
	duration int,
	date time.Time,
	bookings []*domain.Booking,
	quote func(window domain.Window) (float64, string),
) []Slot {
	result := make([]Slot, 0, len(slots))

	for _, slotStart := range slots {
		slotEnd, err := slotStart.AddMinutes(duration)
		if err != nil {
			continue
		}

		windowStart, err := slotStart.At(date)
		if err != nil {
			continue
		}
		windowEnd, err := slotEnd.At(date)
		if err != nil {
			continue
		}

		window := domain.Window{
			Start: windowStart,
			End:   windowEnd,
		}

		available := true
		for _, b := range bookings {
			if !b.IsActive() {
				continue
			}
			if b.Window.Overlaps(window) {
				available = false
				break
			}
		}

		price, currency := quote(window)

		result = append(result, Slot{
			StartTime: slotStart,
			EndTime:   slotEnd,
			Available: available,
			Price:     price,
			Currency:  currency,
		})
	}

	return result
}
