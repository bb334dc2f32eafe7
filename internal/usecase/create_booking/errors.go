package create_booking

import "errors"

var (
	// ErrFieldNotFound возвращается, когда поле не найдено в каталоге
	ErrFieldNotFound = errors.New("create_booking: field not found")

	// ErrSlotNotAvailable возвращается, когда окно пересекается с активным бронированием
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
