package domain

import (
	"errors"
	"fmt"
	"time"
)

// Frequency is the unit a recurring series advances by
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// SeriesMode determines how conflicts inside a series are handled
type SeriesMode string

const (
	// SeriesAllOrNothing отклоняет всю серию, если хотя бы одно вхождение конфликтует
	SeriesAllOrNothing SeriesMode = "all_or_nothing"
	// SeriesPartial создает бесконфликтные вхождения и сообщает о пропущенных
	SeriesPartial SeriesMode = "partial"
)

var (
	// ErrInvalidRecurrence возвращается при некорректном правиле повторения
	ErrInvalidRecurrence = errors.New("domain: invalid recurrence rule")
)

// RecurrenceRule describes how a template window repeats
type RecurrenceRule struct {
	Frequency Frequency
	Interval  int       // каждые N единиц частоты
	EndDate   time.Time // включительно; вхождения с датой позже не генерируются
}

// Validate проверяет корректность правила повторения
func (r RecurrenceRule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, r.Frequency)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidRecurrence)
	}
	if r.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrInvalidRecurrence)
	}
	return nil
}

// Advance returns the window of the next occurrence after w
func (r RecurrenceRule) Advance(w Window) Window {
	switch r.Frequency {
	case FrequencyDaily:
		return w.Shift(r.Interval)
	case FrequencyWeekly:
		return w.Shift(7 * r.Interval)
	case FrequencyMonthly:
		return w.ShiftMonths(r.Interval)
	default:
		return w
	}
}

// Expand generates the deterministic, ordered list of occurrence windows,
// starting from the template window and stopping at (or before) EndDate.
// The template window itself is the first occurrence.
func (r RecurrenceRule) Expand(template Window) []Window {
	endOfLastDay := time.Date(
		r.EndDate.Year(), r.EndDate.Month(), r.EndDate.Day(),
		23, 59, 59, 0, template.Start.Location(),
	)

	windows := make([]Window, 0)
	current := template
	for !current.Start.After(endOfLastDay) {
		windows = append(windows, current)
		current = r.Advance(current)
	}
	return windows
}
