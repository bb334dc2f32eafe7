package paymentledger

import "time"

// Типы событий платежного журнала
const (
	EventChargeRequested = "booking.charge_requested"
	EventRefundIssued    = "booking.refund_issued"
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// ChargeEvent публикуется при создании бронирования
// Платежный сервис выставляет счет на сумму TotalAmount
type ChargeEvent struct {
	Type        string    `json:"type"`
	BookingRef  string    `json:"booking_ref"`
	FieldID     int64     `json:"field_id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	RequestedAt time.Time `json:"requested_at"`
}

// RefundEvent публикуется при отмене бронирования с возвратом
type RefundEvent struct {
	Type        string    `json:"type"`
	BookingRef  string    `json:"booking_ref"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Percent     float64   `json:"percent"`
	Currency    string    `json:"currency"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// PaymentEvent приходит из платежного сервиса после обработки счета
type PaymentEvent struct {
	Type       string    `json:"type"`
	BookingRef string    `json:"booking_ref"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
