package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

func openDay(open, close string) DaySchedule {
	o := types.TimeString(open)
	c := types.TimeString(close)
	return DaySchedule{IsOpen: true, OpenTime: &o, CloseTime: &c}
}

func validField() *Field {
	day := openDay("08:00", "22:00")
	return &Field{
		ID:    7,
		Name:  "Арена Север",
		Sport: "football",
		Schedule: WeekSchedule{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
		Pricing: FieldPricing{
			HourlyRate: 2000,
			Currency:   "RUB",
		},
		MinBookingMinutes: 60,
		MaxBookingMinutes: 180,
	}
}

func TestField_Validate(t *testing.T) {
	require.NoError(t, validField().Validate())

	t.Run("нулевой ID", func(t *testing.T) {
		f := validField()
		f.ID = 0
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("max меньше min", func(t *testing.T) {
		f := validField()
		f.MaxBookingMinutes = 30
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("открытый день без времени работы", func(t *testing.T) {
		f := validField()
		f.Schedule.Monday = DaySchedule{IsOpen: true}
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("открытие позже закрытия", func(t *testing.T) {
		f := validField()
		f.Schedule.Monday = openDay("22:00", "08:00")
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("процент возврата вне диапазона", func(t *testing.T) {
		f := validField()
		f.CancellationPolicy.RefundTiers = []RefundTier{{MinHoursBefore: 24, Percent: 150}}
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("особая дата без часов на закрытый день недели", func(t *testing.T) {
		f := validField()
		// 2025-06-11 - среда
		f.Schedule.Wednesday = DaySchedule{IsOpen: false}
		f.SpecialDates = []SpecialDate{{
			Date:        time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			IsAvailable: true,
		}}
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})

	t.Run("особая дата со своими часами на закрытый день недели", func(t *testing.T) {
		f := validField()
		f.Schedule.Wednesday = DaySchedule{IsOpen: false}
		o := types.TimeString("10:00")
		c := types.TimeString("16:00")
		f.SpecialDates = []SpecialDate{{
			Date:        time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			IsAvailable: true,
			OpenTime:    &o,
			CloseTime:   &c,
		}}
		assert.NoError(t, f.Validate())
	})

	t.Run("особая дата с открытием позже закрытия", func(t *testing.T) {
		f := validField()
		o := types.TimeString("16:00")
		c := types.TimeString("10:00")
		f.SpecialDates = []SpecialDate{{
			Date:        time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			IsAvailable: true,
			OpenTime:    &o,
			CloseTime:   &c,
		}}
		assert.ErrorIs(t, f.Validate(), ErrInvalidField)
	})
}

func TestField_EffectiveScheduleFor(t *testing.T) {
	f := validField()
	// 2025-06-11 - среда
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	t.Run("обычный день по недельному расписанию", func(t *testing.T) {
		day := f.EffectiveScheduleFor(date)
		assert.True(t, day.IsOpen)
		assert.Equal(t, types.TimeString("08:00"), *day.OpenTime)
	})

	t.Run("особая дата закрывает поле", func(t *testing.T) {
		f := validField()
		f.SpecialDates = []SpecialDate{{Date: date, IsAvailable: false}}

		day := f.EffectiveScheduleFor(date)
		assert.False(t, day.IsOpen)
	})

	t.Run("особая дата меняет часы работы", func(t *testing.T) {
		f := validField()
		o := types.TimeString("10:00")
		c := types.TimeString("16:00")
		f.SpecialDates = []SpecialDate{{Date: date, IsAvailable: true, OpenTime: &o, CloseTime: &c}}

		day := f.EffectiveScheduleFor(date)
		assert.True(t, day.IsOpen)
		assert.Equal(t, types.TimeString("10:00"), *day.OpenTime)
		assert.Equal(t, types.TimeString("16:00"), *day.CloseTime)
	})

	t.Run("особая дата на другой день не влияет", func(t *testing.T) {
		f := validField()
		f.SpecialDates = []SpecialDate{{Date: date.AddDate(0, 0, 1), IsAvailable: false}}

		day := f.EffectiveScheduleFor(date)
		assert.True(t, day.IsOpen)
	})

	t.Run("особая дата без часов наследует недельное расписание", func(t *testing.T) {
		f := validField()
		f.SpecialDates = []SpecialDate{{Date: date, IsAvailable: true}}

		day := f.EffectiveScheduleFor(date)
		assert.True(t, day.IsOpen)
		assert.Equal(t, types.TimeString("08:00"), *day.OpenTime)
		assert.Equal(t, types.TimeString("22:00"), *day.CloseTime)
	})

	t.Run("особая дата без часов на закрытый день остается закрытой", func(t *testing.T) {
		f := validField()
		f.Schedule.Wednesday = DaySchedule{IsOpen: false}
		f.SpecialDates = []SpecialDate{{Date: date, IsAvailable: true}}

		day := f.EffectiveScheduleFor(date)
		assert.False(t, day.IsOpen)
	})
}

func TestField_RefundTiers(t *testing.T) {
	t.Run("стандартные условия по умолчанию", func(t *testing.T) {
		f := validField()
		tiers := f.RefundTiers()
		assert.Equal(t, DefaultRefundTiers, tiers)
	})

	t.Run("условия поля перекрывают стандартные", func(t *testing.T) {
		f := validField()
		f.CancellationPolicy.RefundTiers = []RefundTier{{MinHoursBefore: 48, Percent: 100}}

		tiers := f.RefundTiers()
		assert.Len(t, tiers, 1)
		assert.Equal(t, 48.0, tiers[0].MinHoursBefore)
	})
}

func TestField_NoShowGrace(t *testing.T) {
	f := validField()
	assert.Equal(t, DefaultNoShowGraceMinutes, f.NoShowGrace())

	f.CancellationPolicy.NoShowGraceMinutes = 15
	assert.Equal(t, 15, f.NoShowGrace())
}
