package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

var (
	// ErrInvalidField возвращается, когда данные поля из каталога не проходят валидацию
	ErrInvalidField = errors.New("domain: invalid field")
)

// Field represents a bookable field from the external catalog.
// The booking engine only reads fields; they are created and updated by
// the FieldService.
type Field struct {
	ID    int64
	Name  string
	Sport string

	Schedule     WeekSchedule
	SpecialDates []SpecialDate

	Pricing FieldPricing

	MinBookingMinutes  int
	MaxBookingMinutes  int
	AdvanceBookingDays int // 0 = unlimited

	CancellationPolicy CancellationPolicy
}

// WeekSchedule is the regular weekly operating schedule of a field
type WeekSchedule struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// DaySchedule is the operating hours for one weekday
type DaySchedule struct {
	IsOpen    bool
	OpenTime  *types.TimeString
	CloseTime *types.TimeString
	Breaks    []BreakInterval
}

// BreakInterval is a pause inside operating hours (cleaning, maintenance)
type BreakInterval struct {
	Start types.TimeString
	End   types.TimeString
}

// SpecialDate overrides the weekly schedule for one calendar date
// (holidays, tournaments, maintenance days)
type SpecialDate struct {
	Date        time.Time
	IsAvailable bool
	OpenTime    *types.TimeString // только если IsAvailable и часы отличаются от обычных
	CloseTime   *types.TimeString
}

// FieldPricing holds the rates used to quote a booking
type FieldPricing struct {
	HourlyRate     float64
	Currency       string
	PeakHourlyRate *float64
	PeakWindows    []PeakWindow
	GroupDiscounts []GroupDiscount
}

// PeakWindow is a daily time range during which the peak rate applies
type PeakWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// GroupDiscount is a discount tier applied by expected participant count.
// Tiers are not stacked - the single best matching tier wins.
type GroupDiscount struct {
	MinPlayers int
	Percent    float64
}

// CancellationPolicy defines the refund tiers of a field.
// Empty RefundTiers means the default policy applies.
type CancellationPolicy struct {
	RefundTiers        []RefundTier
	NoShowGraceMinutes int // 0 = default grace
}

// RefundTier maps "hours before start" to a refund percentage
type RefundTier struct {
	MinHoursBefore float64
	Percent        float64
}

// ScheduleForWeekday returns the regular schedule for the given weekday
func (f *Field) ScheduleForWeekday(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return f.Schedule.Monday
	case time.Tuesday:
		return f.Schedule.Tuesday
	case time.Wednesday:
		return f.Schedule.Wednesday
	case time.Thursday:
		return f.Schedule.Thursday
	case time.Friday:
		return f.Schedule.Friday
	case time.Saturday:
		return f.Schedule.Saturday
	case time.Sunday:
		return f.Schedule.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// SpecialDateFor returns the special-date override for the given date, if any
func (f *Field) SpecialDateFor(date time.Time) *SpecialDate {
	y, m, d := date.Date()
	for i := range f.SpecialDates {
		sy, sm, sd := f.SpecialDates[i].Date.Date()
		if sy == y && sm == m && sd == d {
			return &f.SpecialDates[i]
		}
	}
	return nil
}

// EffectiveScheduleFor resolves the schedule for a concrete date:
// a special date takes precedence over the weekly schedule
func (f *Field) EffectiveScheduleFor(date time.Time) DaySchedule {
	if special := f.SpecialDateFor(date); special != nil {
		if !special.IsAvailable {
			return DaySchedule{IsOpen: false}
		}
		day := f.ScheduleForWeekday(date.Weekday())
		day.IsOpen = true
		if special.OpenTime != nil {
			day.OpenTime = special.OpenTime
		}
		if special.CloseTime != nil {
			day.CloseTime = special.CloseTime
		}
		// Особая дата без своих часов на обычно закрытый день открыть поле
		// не может - часов работы нет ни у даты, ни у недельного расписания.
		// Validate отклоняет такие данные на входе
		if day.OpenTime == nil || day.CloseTime == nil {
			return DaySchedule{IsOpen: false}
		}
		return day
	}
	return f.ScheduleForWeekday(date.Weekday())
}

// RefundTiers returns the field policy tiers, or the default tiers
// when the field does not override them
func (f *Field) RefundTiers() []RefundTier {
	if len(f.CancellationPolicy.RefundTiers) > 0 {
		return f.CancellationPolicy.RefundTiers
	}
	return DefaultRefundTiers
}

// NoShowGrace returns the no-show grace period of the field in minutes
func (f *Field) NoShowGrace() int {
	if f.CancellationPolicy.NoShowGraceMinutes > 0 {
		return f.CancellationPolicy.NoShowGraceMinutes
	}
	return DefaultNoShowGraceMinutes
}

// HasAdvanceBookingLimit returns true if there is a limit on how far
// in advance bookings can be placed
func (f *Field) HasAdvanceBookingLimit() bool {
	return f.AdvanceBookingDays > 0
}

// Validate проверяет инварианты данных поля, полученных из каталога
func (f *Field) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidField)
	}
	if f.MinBookingMinutes <= 0 {
		return fmt.Errorf("%w: min booking duration must be positive", ErrInvalidField)
	}
	if f.MaxBookingMinutes < f.MinBookingMinutes {
		return fmt.Errorf("%w: max booking duration must be >= min", ErrInvalidField)
	}
	if f.AdvanceBookingDays < 0 {
		return fmt.Errorf("%w: advance booking days must not be negative", ErrInvalidField)
	}
	if f.Pricing.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate must not be negative", ErrInvalidField)
	}

	days := []DaySchedule{
		f.Schedule.Monday, f.Schedule.Tuesday, f.Schedule.Wednesday,
		f.Schedule.Thursday, f.Schedule.Friday, f.Schedule.Saturday, f.Schedule.Sunday,
	}
	for _, day := range days {
		if err := day.validate(); err != nil {
			return err
		}
	}

	for _, sd := range f.SpecialDates {
		if !sd.IsAvailable {
			continue
		}
		if sd.OpenTime != nil {
			if err := sd.OpenTime.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidField, err)
			}
		}
		if sd.CloseTime != nil {
			if err := sd.CloseTime.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidField, err)
			}
		}
		if sd.OpenTime != nil && sd.CloseTime != nil && !sd.OpenTime.IsBefore(*sd.CloseTime) {
			return fmt.Errorf("%w: special date open time must be before close time", ErrInvalidField)
		}
		// Доступная особая дата без своих часов наследует недельное
		// расписание - день недели при этом должен быть открыт
		if (sd.OpenTime == nil || sd.CloseTime == nil) && !f.ScheduleForWeekday(sd.Date.Weekday()).IsOpen {
			return fmt.Errorf("%w: available special date on a closed weekday must set open and close times", ErrInvalidField)
		}
	}

	for _, tier := range f.CancellationPolicy.RefundTiers {
		if tier.Percent < 0 || tier.Percent > 100 {
			return fmt.Errorf("%w: refund percent must be within [0, 100]", ErrInvalidField)
		}
		if tier.MinHoursBefore < 0 {
			return fmt.Errorf("%w: refund tier hours must not be negative", ErrInvalidField)
		}
	}

	return nil
}

func (d DaySchedule) validate() error {
	if !d.IsOpen {
		return nil
	}
	if d.OpenTime == nil || d.CloseTime == nil {
		return fmt.Errorf("%w: open day must have open and close times", ErrInvalidField)
	}
	if err := d.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if err := d.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if !d.OpenTime.IsBefore(*d.CloseTime) {
		return fmt.Errorf("%w: open time must be before close time", ErrInvalidField)
	}
	for _, br := range d.Breaks {
		if err := br.Start.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidField, err)
		}
		if err := br.End.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidField, err)
		}
		if !br.Start.IsBefore(br.End) {
			return fmt.Errorf("%w: break start must be before break end", ErrInvalidField)
		}
	}
	return nil
}
