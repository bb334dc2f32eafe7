package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FieldBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldBookingService/internal/availability"
	createBooking "github.com/m04kA/SMC-FieldBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeFormat  = "некорректный формат времени, ожидается RFC3339"
	msgInvalidInput       = "некорректные данные бронирования"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgFieldNotFound      = "поле не найдено"
	msgFieldClosed        = "поле закрыто в выбранную дату"
	msgOutsideHours       = "слот выходит за часы работы поля"
	msgStartInPast        = "время начала уже прошло"
	msgTooFarInAdvance    = "дата бронирования слишком далеко в будущем"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeFormat)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrFieldNotFound):
			h.logger.Warn("POST /bookings - Field not found: field_id=%d", req.FieldID)
			handlers.RespondNotFound(w, msgFieldNotFound)

		case errors.Is(err, availability.ErrFieldClosed):
			h.logger.Warn("POST /bookings - Field closed: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondUnprocessable(w, msgFieldClosed)

		case errors.Is(err, availability.ErrOutsideOperatingHours):
			h.logger.Warn("POST /bookings - Outside operating hours: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondUnprocessable(w, msgOutsideHours)

		case errors.Is(err, availability.ErrStartInPast):
			h.logger.Warn("POST /bookings - Start in past: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, availability.ErrTooFarInAdvance):
			h.logger.Warn("POST /bookings - Too far in advance: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondBadRequest(w, msgTooFarInAdvance)

		case errors.Is(err, createBooking.ErrInvalidInput), availability.IsValidationError(err):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, field_id=%d, error=%v", userID, req.FieldID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, field_id=%d, error=%v",
				userID, req.FieldID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, ref=%s, user_id=%d, field_id=%d",
		result.ID, result.BookingRef, userID, req.FieldID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
