package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-FieldBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings/models"
)

const (
	msgNotFound  = "бронирование не найдено"
	msgForbidden = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Принимает как числовой ID, так и внешний идентификатор (booking ref)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())

	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	var (
		booking *models.BookingResponse
		err     error
	)

	if bookingID, parseErr := strconv.ParseInt(bookingIDStr, 10, 64); parseErr == nil {
		booking, err = h.service.GetByID(r.Context(), bookingID, userID, isAdmin)
	} else {
		booking, err = h.service.GetByRef(r.Context(), bookingIDStr, userID, isAdmin)
	}

	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id} - Booking not found: booking=%s", bookingIDStr)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - Access denied: booking=%s, user_id=%d", bookingIDStr, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id} - Failed to get booking: booking=%s, error=%v", bookingIDStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved: booking=%s, user_id=%d", bookingIDStr, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
