package check_in

import (
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings/models"
)

// CheckInRequest HTTP request model
type CheckInRequest struct {
	Method string `json:"method,omitempty"` // "manual", "qr", "geo"
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CheckInRequest) ToServiceRequest(userID int64, isAdmin bool) *models.CheckInRequest {
	return &models.CheckInRequest{
		UserID:  userID,
		IsAdmin: isAdmin,
		Method:  r.Method,
	}
}
