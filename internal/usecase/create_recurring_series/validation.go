package create_recurring_series

import (
	"fmt"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.FieldID <= 0 {
		return fmt.Errorf("%w: fieldID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if !req.StartTime.Before(req.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if req.Participants <= 0 {
		return fmt.Errorf("%w: participants must be positive", ErrInvalidInput)
	}

	if req.EndDate.Before(req.StartTime) {
		return fmt.Errorf("%w: endDate must not be before the first occurrence", ErrInvalidInput)
	}

	return nil
}

// seriesMode разбирает режим создания серии, по умолчанию all_or_nothing
func seriesMode(mode string) (domain.SeriesMode, error) {
	switch domain.SeriesMode(mode) {
	case domain.SeriesAllOrNothing, domain.SeriesPartial:
		return domain.SeriesMode(mode), nil
	case "":
		return domain.SeriesAllOrNothing, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
}
