package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	IsAdmin            bool   `json:"isAdmin"`
	CancellationReason string `json:"cancellationReason"`
	CancelSeries       bool   `json:"cancelSeries,omitempty"` // Отменить все будущие бронирования серии
}

// ConfirmBookingRequest запрос на подтверждение бронирования
type ConfirmBookingRequest struct {
	UserID  int64 `json:"userId"`
	IsAdmin bool  `json:"isAdmin"`
}

// CheckInRequest запрос на отметку прибытия
type CheckInRequest struct {
	UserID  int64  `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	Method  string `json:"method,omitempty"` // "manual", "qr", "geo"
}

// CheckOutRequest запрос на завершение бронирования
type CheckOutRequest struct {
	UserID    int64   `json:"userId"`
	IsAdmin   bool    `json:"isAdmin"`
	Condition *string `json:"condition,omitempty"` // Состояние поля после игры
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetFieldBookingsRequest запрос на получение бронирований поля
type GetFieldBookingsRequest struct {
	UserID          int64      `json:"userId"`
	IsAdmin         bool       `json:"isAdmin"`
	FieldID         int64      `json:"fieldId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и no-show
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetFieldBookingsRequest) ToDomainFilter() (domain.FieldBookingsFilter, error) {
	filter := domain.FieldBookingsFilter{
		FieldID:         r.FieldID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// PricingResponse снимок цены бронирования
type PricingResponse struct {
	BaseAmount      float64 `json:"baseAmount"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	TotalAmount     float64 `json:"totalAmount"`
	Currency        string  `json:"currency"`
}

// PaymentResponse состояние оплаты бронирования
type PaymentResponse struct {
	Status       string  `json:"status"`
	PaidAmount   float64 `json:"paidAmount"`
	RefundAmount float64 `json:"refundAmount,omitempty"`
}

// CancellationResponse детали отмены бронирования
type CancellationResponse struct {
	CancelledBy    string  `json:"cancelledBy"`
	CancelledAt    string  `json:"cancelledAt"` // ISO 8601 format
	Reason         string  `json:"reason,omitempty"`
	RefundAmount   float64 `json:"refundAmount"`
	RefundEligible bool    `json:"refundEligible"`
}

// RecurrenceResponse привязка бронирования к серии
type RecurrenceResponse struct {
	ParentBookingID  int64  `json:"parentBookingId"`
	OccurrenceNumber int    `json:"occurrenceNumber"`
	Frequency        string `json:"frequency"`
	Interval         int    `json:"interval"`
	EndDate          string `json:"endDate"` // "2025-12-31"
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64  `json:"id"`
	BookingRef string `json:"bookingRef"`
	FieldID    int64  `json:"fieldId"`
	UserID     int64  `json:"userId"`

	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Status       string    `json:"status"`
	Participants int       `json:"participants"`

	Pricing PricingResponse `json:"pricing"`
	Payment PaymentResponse `json:"payment"`

	ConfirmationCode *string `json:"confirmationCode,omitempty"`
	ConfirmedAt      *string `json:"confirmedAt,omitempty"` // ISO 8601 format
	CheckInAt        *string `json:"checkInAt,omitempty"`
	CheckOutAt       *string `json:"checkOutAt,omitempty"`

	Cancellation *CancellationResponse `json:"cancellation,omitempty"`
	Recurrence   *RecurrenceResponse   `json:"recurrence,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelResponse результат отмены бронирования
type CancelResponse struct {
	Booking        BookingResponse `json:"booking"`
	RefundAmount   float64         `json:"refundAmount"`
	RefundPercent  float64         `json:"refundPercent"`
	CancelledCount int             `json:"cancelledCount,omitempty"` // Для отмены серии
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           b.ID,
		BookingRef:   b.BookingRef,
		FieldID:      b.FieldID,
		UserID:       b.UserID,
		StartTime:    b.Window.Start,
		EndTime:      b.Window.End,
		Status:       string(b.Status),
		Participants: b.Participants,
		Pricing: PricingResponse{
			BaseAmount:      b.Pricing.BaseAmount,
			DiscountPercent: b.Pricing.DiscountPercent,
			DiscountAmount:  b.Pricing.DiscountAmount,
			TotalAmount:     b.Pricing.TotalAmount,
			Currency:        b.Pricing.Currency,
		},
		Payment: PaymentResponse{
			Status:       string(b.Payment.Status),
			PaidAmount:   b.Payment.PaidAmount,
			RefundAmount: b.Payment.RefundAmount,
		},
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	if b.Confirmation != nil {
		code := b.Confirmation.Code
		confirmedAt := b.Confirmation.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmationCode = &code
		resp.ConfirmedAt = &confirmedAt
	}

	if b.CheckIn != nil {
		checkInAt := b.CheckIn.At.Format(time.RFC3339)
		resp.CheckInAt = &checkInAt
	}

	if b.CheckOut != nil {
		checkOutAt := b.CheckOut.At.Format(time.RFC3339)
		resp.CheckOutAt = &checkOutAt
	}

	if b.Cancellation != nil {
		resp.Cancellation = &CancellationResponse{
			CancelledBy:    string(b.Cancellation.CancelledBy),
			CancelledAt:    b.Cancellation.CancelledAt.Format(time.RFC3339),
			Reason:         b.Cancellation.Reason,
			RefundAmount:   b.Cancellation.RefundAmount,
			RefundEligible: b.Cancellation.RefundEligible,
		}
	}

	if b.Recurrence != nil {
		resp.Recurrence = &RecurrenceResponse{
			ParentBookingID:  b.Recurrence.ParentBookingID,
			OccurrenceNumber: b.Recurrence.OccurrenceNumber,
			Frequency:        string(b.Recurrence.Frequency),
			Interval:         b.Recurrence.Interval,
			EndDate:          b.Recurrence.EndDate.Format(domain.DateFormat),
		}
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	for _, valid := range domain.ValidStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
