package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

// Evaluate решает, может ли окно быть предоставлено: проверяет длительность,
// расписание поля и пересечения с существующими активными бронированиями.
//
// Вызов Evaluate сам по себе не защищает от гонок - вызывающий код обязан
// выполнять "Evaluate + вставка" внутри сериализуемой транзакции (см. usecase
// create_booking), иначе два параллельных запроса могут пройти проверку
// одновременно
func Evaluate(field *domain.Field, window domain.Window, existing []*domain.Booking, now time.Time) error {
	if err := CheckWindow(field, window, now); err != nil {
		return err
	}
	return CheckConflicts(window, existing)
}

// CheckWindow проверяет окно против ограничений поля без учёта других бронирований
func CheckWindow(field *domain.Field, window domain.Window, now time.Time) error {
	if !window.IsValid() {
		return ErrInvalidWindow
	}
	if !window.SameDay() {
		return fmt.Errorf("%w: window must not span midnight", ErrOutsideOperatingHours)
	}

	if err := checkDuration(field, window); err != nil {
		return err
	}

	if window.Start.Before(now) {
		return ErrStartInPast
	}

	if err := checkAdvanceLimit(field, window, now); err != nil {
		return err
	}

	return checkOperatingHours(field, window)
}

// CheckConflicts проверяет пересечение окна с активными бронированиями
// по правилу полуоткрытых интервалов: граничащие окна не конфликтуют
func CheckConflicts(window domain.Window, existing []*domain.Booking) error {
	for _, booking := range existing {
		if !booking.IsActive() {
			continue
		}
		if window.Overlaps(booking.Window) {
			return fmt.Errorf("%w: booking id=%d occupies %s - %s",
				ErrBookingConflict,
				booking.ID,
				booking.Window.Start.Format(time.RFC3339),
				booking.Window.End.Format(time.RFC3339),
			)
		}
	}
	return nil
}

func checkDuration(field *domain.Field, window domain.Window) error {
	minutes := window.Minutes()
	if minutes < field.MinBookingMinutes {
		return fmt.Errorf("%w: %d < %d minutes", ErrDurationTooShort, minutes, field.MinBookingMinutes)
	}
	if minutes > field.MaxBookingMinutes {
		return fmt.Errorf("%w: %d > %d minutes", ErrDurationTooLong, minutes, field.MaxBookingMinutes)
	}
	return nil
}

func checkAdvanceLimit(field *domain.Field, window domain.Window, now time.Time) error {
	if !field.HasAdvanceBookingLimit() {
		return nil
	}

	// Сравниваем только даты: бронирование на последний разрешённый день допустимо целиком
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, field.AdvanceBookingDays)

	if window.Date().After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrTooFarInAdvance, field.AdvanceBookingDays)
	}
	return nil
}

func checkOperatingHours(field *domain.Field, window domain.Window) error {
	day := field.EffectiveScheduleFor(window.Start)
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return ErrFieldClosed
	}

	startTime := types.NewTimeString(window.Start)
	endTime := types.NewTimeString(window.End)

	if startTime.IsBefore(*day.OpenTime) {
		return fmt.Errorf("%w: starts before opening at %s", ErrOutsideOperatingHours, day.OpenTime)
	}
	if endTime.IsAfter(*day.CloseTime) {
		return fmt.Errorf("%w: ends after closing at %s", ErrOutsideOperatingHours, day.CloseTime)
	}

	// Окно не должно пересекать перерывы (по тому же правилу полуоткрытых интервалов)
	for _, br := range day.Breaks {
		if startTime.IsBefore(br.End) && endTime.IsAfter(br.Start) {
			return fmt.Errorf("%w: overlaps break %s - %s", ErrOutsideOperatingHours, br.Start, br.End)
		}
	}

	return nil
}
