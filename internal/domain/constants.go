package domain

// Default policy values
const (
	DefaultNoShowGraceMinutes = 30
	DefaultCurrency           = "RUB"
)

// SystemActorID идентификатор системы в полях "кем выполнено действие"
// (автоподтверждение, фоновая уборка статусов)
const SystemActorID int64 = 0

// Business validation constants
const (
	MinParticipants             = 1
	MaxParticipants             = 100
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxSeriesOccurrences        = 52 // год еженедельных бронирований
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultRefundTiers стандартные условия возврата при отмене:
// за 24 часа и раньше - 100%, от 12 до 24 часов - 50%, меньше 12 часов - 0%
// Поле может переопределить их своей cancellation policy
var DefaultRefundTiers = []RefundTier{
	{MinHoursBefore: 24, Percent: 100},
	{MinHoursBefore: 12, Percent: 50},
	{MinHoursBefore: 0, Percent: 0},
}

// ActiveStatuses список статусов, при которых бронирование занимает поле
// Используется в проверке пересечений
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// InactiveStatuses список статусов, не занимающих поле
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
	StatusCompleted,
}

// ValidStatuses все допустимые статусы бронирования
var ValidStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
