package check_out

import (
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings/models"
)

// CheckOutRequest HTTP request model
type CheckOutRequest struct {
	Condition *string `json:"condition,omitempty"` // Состояние поля после игры
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CheckOutRequest) ToServiceRequest(userID int64, isAdmin bool) *models.CheckOutRequest {
	return &models.CheckOutRequest{
		UserID:    userID,
		IsAdmin:   isAdmin,
		Condition: r.Condition,
	}
}
