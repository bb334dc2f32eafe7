package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/ptr"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (r *fakeBookingRepo) ActiveInRange(ctx context.Context, fieldID int64, from, to time.Time) ([]*domain.Booking, error) {
	return r.bookings, nil
}

type fakeFieldClient struct {
	field *domain.Field
}

func (c *fakeFieldClient) GetField(ctx context.Context, fieldID int64) (*domain.Field, error) {
	return c.field, nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func dayOpen(open, close string, breaks ...domain.BreakInterval) domain.DaySchedule {
	o := types.TimeString(open)
	c := types.TimeString(close)
	return domain.DaySchedule{IsOpen: true, OpenTime: &o, CloseTime: &c, Breaks: breaks}
}

func testField() *domain.Field {
	day := dayOpen("10:00", "14:00")
	return &domain.Field{
		ID:    7,
		Name:  "Арена Север",
		Sport: "football",
		Schedule: domain.WeekSchedule{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
		Pricing: domain.FieldPricing{
			HourlyRate: 2000,
			Currency:   "RUB",
		},
		MinBookingMinutes: 60,
		MaxBookingMinutes: 180,
	}
}

func newTestUseCase(repo *fakeBookingRepo, field *domain.Field) *UseCase {
	uc := NewUseCase(repo, &fakeFieldClient{field: field}, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecute_FullGridForFutureDate(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, testField())

	resp, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	// 10:00-14:00 с часовым шагом: 10, 11, 12, 13
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("11:00"), resp.Slots[0].EndTime)
	for _, s := range resp.Slots {
		assert.True(t, s.Available)
		assert.Equal(t, float64(2000), s.Price)
		assert.Equal(t, "RUB", s.Currency)
	}
}

func TestExecute_BookedSlotMarkedUnavailable(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{
		bookings: []*domain.Booking{
			{
				FieldID: 7,
				Status:  domain.StatusConfirmed,
				Window: domain.Window{
					Start: time.Date(2025, 6, 11, 11, 0, 0, 0, time.UTC),
					End:   time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC),
				},
			},
		},
	}
	uc := newTestUseCase(repo, testField())

	resp, err := uc.Execute(context.Background(), &Request{FieldID: 7, Date: date})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4)
	assert.True(t, resp.Slots[0].Available)  // 10:00
	assert.False(t, resp.Slots[1].Available) // 11:00 - занят
	assert.True(t, resp.Slots[2].Available)  // 12:00 - бронирование закончилось ровно в 12:00
	assert.True(t, resp.Slots[3].Available)  // 13:00
}

func TestExecute_CancelledBookingDoesNotBlock(t *testing.T) {
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{
		bookings: []*domain.Booking{
			{
				FieldID: 7,
				Status:  domain.StatusCancelled,
				Window: domain.Window{
					Start: time.Date(2025, 6, 11, 11, 0, 0, 0, time.UTC),
					End:   time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC),
				},
			},
		},
	}
	uc := newTestUseCase(repo, testField())

	resp, err := uc.Execute(context.Background(), &Request{FieldID: 7, Date: date})

	require.NoError(t, err)
	for _, s := range resp.Slots {
		assert.True(t, s.Available)
	}
}

func TestExecute_BreakExcludedFromGrid(t *testing.T) {
	field := testField()
	field.Schedule.Wednesday = dayOpen("10:00", "14:00", domain.BreakInterval{
		Start: types.TimeString("12:00"),
		End:   types.TimeString("13:00"),
	})
	uc := newTestUseCase(&fakeBookingRepo{}, field)

	// 2025-06-11 - среда
	resp, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	// Слот 12:00-13:00 выпадает из сетки
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("11:00"), resp.Slots[1].StartTime)
	assert.Equal(t, types.TimeString("13:00"), resp.Slots[2].StartTime)
}

func TestExecute_SpecialDateClosed(t *testing.T) {
	field := testField()
	field.SpecialDates = []domain.SpecialDate{
		{Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), IsAvailable: false},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, field)

	resp, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_TodayPastSlotsDropped(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, testField())

	// Сейчас 12:00 - слоты 10:00 и 11:00 уже в прошлом
	resp, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    testNow,
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, types.TimeString("12:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("13:00"), resp.Slots[1].StartTime)
}

func TestExecute_PeakPricingAppliedToSlot(t *testing.T) {
	field := testField()
	field.Pricing.PeakHourlyRate = ptr.Ptr(3000.0)
	field.Pricing.PeakWindows = []domain.PeakWindow{
		{Start: types.TimeString("12:00"), End: types.TimeString("14:00")},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, field)

	resp, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, float64(2000), resp.Slots[0].Price) // 10:00 - базовый тариф
	assert.Equal(t, float64(3000), resp.Slots[2].Price) // 12:00 - пиковый тариф
}

func TestExecute_DurationOutsideLimitsRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, testField())

	_, err := uc.Execute(context.Background(), &Request{
		FieldID:         7,
		Date:            time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_DateBeyondAdvanceLimit(t *testing.T) {
	field := testField()
	field.AdvanceBookingDays = 7
	uc := newTestUseCase(&fakeBookingRepo{}, field)

	_, err := uc.Execute(context.Background(), &Request{
		FieldID: 7,
		Date:    testNow.AddDate(0, 0, 30),
	})

	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}
