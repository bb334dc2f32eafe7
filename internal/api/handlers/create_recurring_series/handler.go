package create_recurring_series

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FieldBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-FieldBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldBookingService/internal/availability"
	createSeries "github.com/m04kA/SMC-FieldBookingService/internal/usecase/create_recurring_series"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeFormat  = "некорректный формат времени или даты"
	msgInvalidInput       = "некорректные данные серии бронирований"
	msgSeriesConflict     = "часть вхождений серии недоступна"
	msgNoOccurrences      = "все вхождения серии недоступны"
	msgTooManyOccurrences = "серия содержит слишком много вхождений"
	msgFieldNotFound      = "поле не найдено"
)

type Handler struct {
	useCase CreateRecurringSeriesUseCase
	logger  Logger
}

func NewHandler(useCase CreateRecurringSeriesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/series
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req CreateSeriesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/series - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings/series - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeFormat)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createSeries.ErrSeriesConflict):
			h.logger.Warn("POST /bookings/series - Series conflict: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondConflict(w, msgSeriesConflict)

		case errors.Is(err, createSeries.ErrNoOccurrencesAvailable):
			h.logger.Warn("POST /bookings/series - No occurrences available: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondConflict(w, msgNoOccurrences)

		case errors.Is(err, createSeries.ErrTooManyOccurrences):
			h.logger.Warn("POST /bookings/series - Too many occurrences: user_id=%d, field_id=%d", userID, req.FieldID)
			handlers.RespondBadRequest(w, msgTooManyOccurrences)

		case errors.Is(err, createSeries.ErrFieldNotFound):
			h.logger.Warn("POST /bookings/series - Field not found: field_id=%d", req.FieldID)
			handlers.RespondNotFound(w, msgFieldNotFound)

		case errors.Is(err, createSeries.ErrInvalidInput), availability.IsValidationError(err):
			h.logger.Warn("POST /bookings/series - Invalid input: user_id=%d, field_id=%d, error=%v",
				userID, req.FieldID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/series - Failed to create series: user_id=%d, field_id=%d, error=%v",
				userID, req.FieldID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings/series - Series created successfully: series_id=%d, created=%d, skipped=%d, user_id=%d",
		result.SeriesID, len(result.Created), len(result.Skipped), userID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
