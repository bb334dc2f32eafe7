package availability

import "errors"

// Ошибки разбиты на три класса, которые handlers транслируют в HTTP статусы:
// валидация запроса (400), ограничения расписания (422) и конфликт слота (409)

var (
	// ErrInvalidWindow возвращается при некорректном окне (end <= start)
	ErrInvalidWindow = errors.New("availability: invalid booking window")

	// ErrDurationTooShort возвращается, когда длительность меньше минимальной для поля
	ErrDurationTooShort = errors.New("availability: duration is below field minimum")

	// ErrDurationTooLong возвращается, когда длительность больше максимальной для поля
	ErrDurationTooLong = errors.New("availability: duration is above field maximum")

	// ErrStartInPast возвращается, когда начало окна уже прошло
	ErrStartInPast = errors.New("availability: start time is in the past")

	// ErrTooFarInAdvance возвращается, когда дата превышает ограничение advanceBookingDays
	ErrTooFarInAdvance = errors.New("availability: date is too far in the future")

	// ErrFieldClosed возвращается, когда поле закрыто в указанную дату
	ErrFieldClosed = errors.New("availability: field is closed on this date")

	// ErrOutsideOperatingHours возвращается, когда окно выходит за рабочие часы или попадает на перерыв
	ErrOutsideOperatingHours = errors.New("availability: window is outside operating hours")

	// ErrBookingConflict возвращается при пересечении с активным бронированием
	ErrBookingConflict = errors.New("availability: window overlaps an active booking")
)

// IsValidationError возвращает true для ошибок, исправимых корректировкой запроса
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrDurationTooShort) ||
		errors.Is(err, ErrDurationTooLong)
}

// IsScheduleError возвращает true для ошибок расписания поля
func IsScheduleError(err error) bool {
	return errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrTooFarInAdvance) ||
		errors.Is(err, ErrFieldClosed) ||
		errors.Is(err, ErrOutsideOperatingHours)
}

// IsConflictError возвращает true для конфликта с другим бронированием
func IsConflictError(err error) bool {
	return errors.Is(err, ErrBookingConflict)
}
