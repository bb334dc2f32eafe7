package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-FieldBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	FieldID      int64   `json:"fieldId"`
	StartTime    string  `json:"startTime"` // RFC3339: "2025-10-15T10:00:00Z"
	EndTime      string  `json:"endTime"`
	Participants int     `json:"participants"`
	Notes        *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64  `json:"id"`
	BookingRef string `json:"bookingRef"`
	FieldID    int64  `json:"fieldId"`
	UserID     int64  `json:"userId"`

	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmationCode"`
	Participants     int    `json:"participants"`

	BaseAmount      float64 `json:"baseAmount"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
	DiscountAmount  float64 `json:"discountAmount,omitempty"`
	TotalAmount     float64 `json:"totalAmount"`
	Currency        string  `json:"currency"`

	PaymentStatus string  `json:"paymentStatus"`
	Notes         *string `json:"notes,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:       userID,
		FieldID:      r.FieldID,
		StartTime:    startTime,
		EndTime:      endTime,
		Participants: r.Participants,
		Notes:        r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:               resp.ID,
		BookingRef:       resp.BookingRef,
		FieldID:          resp.FieldID,
		UserID:           resp.UserID,
		StartTime:        resp.StartTime.Format(time.RFC3339),
		EndTime:          resp.EndTime.Format(time.RFC3339),
		Status:           resp.Status,
		ConfirmationCode: resp.ConfirmationCode,
		Participants:     resp.Participants,
		BaseAmount:       resp.BaseAmount,
		DiscountPercent:  resp.DiscountPercent,
		DiscountAmount:   resp.DiscountAmount,
		TotalAmount:      resp.TotalAmount,
		Currency:         resp.Currency,
		PaymentStatus:    resp.PaymentStatus,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
