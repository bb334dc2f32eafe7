package create_recurring_series

import (
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	createSeries "github.com/m04kA/SMC-FieldBookingService/internal/usecase/create_recurring_series"
)

// CreateSeriesRequest HTTP request model
type CreateSeriesRequest struct {
	FieldID      int64   `json:"fieldId"`
	StartTime    string  `json:"startTime"` // RFC3339, первое вхождение серии
	EndTime      string  `json:"endTime"`
	Participants int     `json:"participants"`
	Frequency    string  `json:"frequency"`      // "daily", "weekly", "monthly"
	Interval     int     `json:"interval"`       // каждые N единиц частоты
	EndDate      string  `json:"endDate"`        // "2025-12-31", включительно
	Mode         string  `json:"mode,omitempty"` // "all_or_nothing" (по умолчанию) или "partial"
	Notes        *string `json:"notes,omitempty"`
}

// OccurrenceResponse созданное вхождение серии
type OccurrenceResponse struct {
	BookingID        int64   `json:"bookingId"`
	BookingRef       string  `json:"bookingRef"`
	OccurrenceNumber int     `json:"occurrenceNumber"`
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	TotalAmount      float64 `json:"totalAmount"`
}

// SkippedResponse пропущенное вхождение серии
type SkippedResponse struct {
	OccurrenceNumber int    `json:"occurrenceNumber"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	Reason           string `json:"reason"`
}

// SeriesResponse HTTP response model
type SeriesResponse struct {
	SeriesID    int64                `json:"seriesId"`
	Mode        string               `json:"mode"`
	Status      string               `json:"status"`
	Created     []OccurrenceResponse `json:"created"`
	Skipped     []SkippedResponse    `json:"skipped,omitempty"`
	TotalAmount float64              `json:"totalAmount"`
	Currency    string               `json:"currency"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateSeriesRequest) ToUseCaseRequest(userID int64) (*createSeries.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	return &createSeries.Request{
		UserID:       userID,
		FieldID:      r.FieldID,
		StartTime:    startTime,
		EndTime:      endTime,
		Participants: r.Participants,
		Frequency:    r.Frequency,
		Interval:     r.Interval,
		EndDate:      endDate,
		Mode:         r.Mode,
		Notes:        r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createSeries.Response) *SeriesResponse {
	created := make([]OccurrenceResponse, 0, len(resp.Created))
	for _, occ := range resp.Created {
		created = append(created, OccurrenceResponse{
			BookingID:        occ.BookingID,
			BookingRef:       occ.BookingRef,
			OccurrenceNumber: occ.OccurrenceNumber,
			StartTime:        occ.StartTime.Format(time.RFC3339),
			EndTime:          occ.EndTime.Format(time.RFC3339),
			TotalAmount:      occ.TotalAmount,
		})
	}

	skipped := make([]SkippedResponse, 0, len(resp.Skipped))
	for _, skip := range resp.Skipped {
		skipped = append(skipped, SkippedResponse{
			OccurrenceNumber: skip.OccurrenceNumber,
			StartTime:        skip.StartTime.Format(time.RFC3339),
			EndTime:          skip.EndTime.Format(time.RFC3339),
			Reason:           skip.Reason,
		})
	}

	return &SeriesResponse{
		SeriesID:    resp.SeriesID,
		Mode:        resp.Mode,
		Status:      resp.Status,
		Created:     created,
		Skipped:     skipped,
		TotalAmount: resp.TotalAmount,
		Currency:    resp.Currency,
	}
}
