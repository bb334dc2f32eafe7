package create_recurring_series

import "errors"

var (
	// ErrFieldNotFound возвращается, когда поле не найдено в каталоге
	ErrFieldNotFound = errors.New("create_recurring_series: field not found")

	// ErrSeriesConflict возвращается в режиме all_or_nothing, когда хотя бы
	// одно вхождение серии недоступно
	ErrSeriesConflict = errors.New("create_recurring_series: series has unavailable occurrences")

	// ErrNoOccurrencesAvailable возвращается в режиме partial, когда ни одно
	// вхождение серии не удалось забронировать
	ErrNoOccurrencesAvailable = errors.New("create_recurring_series: no occurrences available")

	// ErrTooManyOccurrences возвращается, когда правило повторения порождает
	// больше вхождений, чем разрешено
	ErrTooManyOccurrences = errors.New("create_recurring_series: too many occurrences")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_recurring_series: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_recurring_series: internal error")
)
