package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var bookingNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testBooking(status BookingStatus) *Booking {
	return &Booking{
		ID:      1,
		FieldID: 7,
		UserID:  100,
		Status:  status,
		Window: Window{
			Start: bookingNow.Add(24 * time.Hour),
			End:   bookingNow.Add(25 * time.Hour),
		},
	}
}

func TestBooking_IsActive(t *testing.T) {
	assert.True(t, testBooking(StatusPending).IsActive())
	assert.True(t, testBooking(StatusConfirmed).IsActive())
	assert.True(t, testBooking(StatusInProgress).IsActive())

	assert.False(t, testBooking(StatusCompleted).IsActive())
	assert.False(t, testBooking(StatusCancelled).IsActive())
	assert.False(t, testBooking(StatusNoShow).IsActive())
}

func TestBooking_CanBeCancelled(t *testing.T) {
	assert.True(t, testBooking(StatusPending).CanBeCancelled())
	assert.True(t, testBooking(StatusConfirmed).CanBeCancelled())

	// Начатая или завершённая игра не отменяется
	assert.False(t, testBooking(StatusInProgress).CanBeCancelled())
	assert.False(t, testBooking(StatusCompleted).CanBeCancelled())
	assert.False(t, testBooking(StatusCancelled).CanBeCancelled())
	assert.False(t, testBooking(StatusNoShow).CanBeCancelled())
}

func TestBooking_CanBeConfirmed(t *testing.T) {
	assert.True(t, testBooking(StatusPending).CanBeConfirmed())
	assert.False(t, testBooking(StatusConfirmed).CanBeConfirmed())
	assert.False(t, testBooking(StatusCancelled).CanBeConfirmed())
}

func TestBooking_CanCheckIn(t *testing.T) {
	b := testBooking(StatusConfirmed)

	// До начала и во время окна - можно
	assert.True(t, b.CanCheckIn(b.Window.Start.Add(-time.Hour)))
	assert.True(t, b.CanCheckIn(b.Window.Start.Add(30*time.Minute)))

	// После конца окна - нельзя
	assert.False(t, b.CanCheckIn(b.Window.End))
	assert.False(t, b.CanCheckIn(b.Window.End.Add(time.Minute)))

	// Не подтверждено - нельзя
	assert.False(t, testBooking(StatusPending).CanCheckIn(b.Window.Start))
}

func TestBooking_IsNoShow(t *testing.T) {
	b := testBooking(StatusConfirmed)
	grace := 30

	// До дедлайна грейс-периода - ещё не no-show
	assert.False(t, b.IsNoShow(b.Window.Start.Add(29*time.Minute), grace))

	// После дедлайна - no-show
	assert.True(t, b.IsNoShow(b.Window.Start.Add(31*time.Minute), grace))

	// Check-in снимает вопрос
	checked := testBooking(StatusConfirmed)
	checked.CheckIn = &CheckInDetails{At: checked.Window.Start, Method: "manual"}
	assert.False(t, checked.IsNoShow(checked.Window.Start.Add(time.Hour), grace))

	// Pending не может стать no-show
	assert.False(t, testBooking(StatusPending).IsNoShow(b.Window.Start.Add(time.Hour), grace))
}

func TestBooking_HoursUntilStart(t *testing.T) {
	b := testBooking(StatusConfirmed)

	assert.InDelta(t, 24.0, b.HoursUntilStart(bookingNow), 0.001)
	assert.InDelta(t, -1.0, b.HoursUntilStart(b.Window.Start.Add(time.Hour)), 0.001)
}

func TestBooking_IsSeriesMember(t *testing.T) {
	b := testBooking(StatusConfirmed)
	assert.False(t, b.IsSeriesMember())

	b.Recurrence = &RecurrenceDetails{ParentBookingID: 10, OccurrenceNumber: 2}
	assert.True(t, b.IsSeriesMember())
}
