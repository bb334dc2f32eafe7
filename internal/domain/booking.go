package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// CancelledBy identifies the actor who cancelled a booking
type CancelledBy string

const (
	CancelledByUser  CancelledBy = "user"
	CancelledByAdmin CancelledBy = "admin"
)

// Booking represents a field reservation in the system
type Booking struct {
	ID         int64
	BookingRef string // внешний идентификатор (UUID), выдается при создании
	FieldID    int64
	UserID     int64

	Window       Window
	Status       BookingStatus
	Participants int

	Pricing PricingDetails
	Payment PaymentDetails

	Cancellation *CancellationDetails
	Confirmation *ConfirmationDetails
	CheckIn      *CheckInDetails
	CheckOut     *CheckOutDetails
	Recurrence   *RecurrenceDetails

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricingDetails is the price snapshot computed once at creation.
// It is immutable afterwards; a reschedule produces a new quote.
type PricingDetails struct {
	BaseAmount      float64
	DiscountPercent float64
	DiscountAmount  float64
	TotalAmount     float64
	Currency        string
}

// PaymentDetails tracks what the external ledger reported back
type PaymentDetails struct {
	Status       PaymentStatus
	PaidAmount   float64
	RefundAmount float64
}

// CancellationDetails records who cancelled a booking and what was refunded
type CancellationDetails struct {
	CancelledBy    CancelledBy
	ActorID        int64
	CancelledAt    time.Time
	Reason         string
	RefundAmount   float64
	RefundEligible bool
}

// ConfirmationDetails records the confirmation of a pending booking
type ConfirmationDetails struct {
	Code        string // confirmation code (UUID), stable across repeated confirms
	ConfirmedAt time.Time
	ConfirmedBy int64
}

// CheckInDetails records the check-in of a confirmed booking
type CheckInDetails struct {
	At         time.Time
	Method     string // "manual", "qr", "geo"
	VerifiedBy int64
}

// CheckOutDetails records the check-out of an in-progress booking
type CheckOutDetails struct {
	At        time.Time
	Condition *string // state of the field reported at check-out
	By        int64
}

// RecurrenceDetails links a generated booking to its series
type RecurrenceDetails struct {
	ParentBookingID  int64
	OccurrenceNumber int
	Frequency        Frequency
	Interval         int
	EndDate          time.Time
}

// IsActive returns true if the booking still occupies the field
// (counts towards the overlap check)
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusInProgress
}

// IsTerminal returns true if no further transition is allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted ||
		b.Status == StatusCancelled ||
		b.Status == StatusNoShow
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeConfirmed returns true if Confirm is a valid (non-noop) transition
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// IsConfirmed returns true if the booking has already been confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed && b.Confirmation != nil
}

// CanCheckIn returns true if a check-in at the given moment is allowed.
// The grace window is "any time before the booking ends": arriving late is
// the user's problem, arriving after the end is a no-show.
func (b *Booking) CanCheckIn(now time.Time) bool {
	return b.Status == StatusConfirmed && now.Before(b.Window.End)
}

// CanCheckOut returns true if the booking can be checked out
func (b *Booking) CanCheckOut() bool {
	return b.Status == StatusInProgress
}

// IsPastEnd returns true if the booking window has fully elapsed
func (b *Booking) IsPastEnd(now time.Time) bool {
	return !now.Before(b.Window.End)
}

// IsNoShow returns true if the booking should be marked no_show:
// confirmed, never checked in, and the start has passed by more than
// the given grace period
func (b *Booking) IsNoShow(now time.Time, graceMinutes int) bool {
	if b.Status != StatusConfirmed || b.CheckIn != nil {
		return false
	}
	deadline := b.Window.Start.Add(time.Duration(graceMinutes) * time.Minute)
	return now.After(deadline)
}

// HoursUntilStart returns the number of hours from now until the booking starts.
// Negative if the start has already passed. Used by the refund calculator.
func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.Window.Start.Sub(now).Hours()
}

// TimeRemaining returns how much of the booking window is left at the given moment
func (b *Booking) TimeRemaining(now time.Time) time.Duration {
	if !now.Before(b.Window.End) {
		return 0
	}
	return b.Window.End.Sub(now)
}

// IsSeriesMember returns true if the booking was generated from a recurrence rule
func (b *Booking) IsSeriesMember() bool {
	return b.Recurrence != nil && b.Recurrence.ParentBookingID != 0
}

// FieldBookingsFilter фильтр для получения бронирований поля
type FieldBookingsFilter struct {
	FieldID         int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отмененные и no-show бронирования
}
