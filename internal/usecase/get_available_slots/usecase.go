package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	fieldClient "github.com/m04kA/SMC-FieldBookingService/internal/integrations/fieldservice"
	"github.com/m04kA/SMC-FieldBookingService/internal/pricing"
)

// UseCase use case для получения сетки доступных слотов поля
type UseCase struct {
	bookingRepo  BookingRepository
	fieldClient  FieldServiceClient
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fieldClient FieldServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		fieldClient:  fieldClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Сетка строится по эффективному расписанию поля на дату: особые даты
// перекрывают недельное расписание, технические перерывы исключаются
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: field=%d, date=%s, duration=%d",
		req.FieldID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем поле из каталога
	field, err := uc.fieldClient.GetField(ctx, req.FieldID)
	if err != nil {
		if errors.Is(err, fieldClient.ErrFieldNotFound) {
			uc.logger.Warn("GetAvailableSlots: field id=%d not found", req.FieldID)
			return nil, ErrFieldNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get field id=%d: %v", req.FieldID, err)
		return nil, fmt.Errorf("%w: failed to get field: %v", ErrInternal, err)
	}

	// 4. Длительность слота: по умолчанию минимальная длительность поля
	duration := req.DurationMinutes
	if duration == 0 {
		duration = field.MinBookingMinutes
	}
	if duration == 0 {
		duration = 60
	}
	if duration < field.MinBookingMinutes || (field.MaxBookingMinutes > 0 && duration > field.MaxBookingMinutes) {
		uc.logger.Warn("GetAvailableSlots: duration %d outside field limits [%d, %d]",
			duration, field.MinBookingMinutes, field.MaxBookingMinutes)
		return nil, fmt.Errorf("%w: duration %d outside field limits", ErrInvalidInput, duration)
	}

	// 5. Проверяем горизонт бронирования
	if err := validateDate(req.Date, now, field.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 6. Эффективное расписание на дату: особая дата перекрывает недельное
	day := field.EffectiveScheduleFor(req.Date)
	if !day.IsOpen {
		uc.logger.Info("GetAvailableSlots: field id=%d is closed on %s",
			req.FieldID, req.Date.Format(domain.DateFormat))
		return &Response{
			FieldID:         req.FieldID,
			Date:            req.Date,
			DurationMinutes: duration,
			Slots:           []Slot{},
		}, nil
	}

	// 7. Генерируем сетку слотов
	timeSlots, err := generateTimeSlots(day, duration, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate time slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate time slots: %v", ErrInternal, err)
	}

	// 8. Получаем активные бронирования поля на эту дату
	bookings, err := uc.bookingRepo.ActiveInRange(ctx, req.FieldID, req.Date, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 9. Размечаем занятость и цену каждого слота
	slots := markAvailability(timeSlots, duration, req.Date, bookings, func(window domain.Window) (float64, string) {
		quote := pricing.Quote(field, window, 1)
		return quote.TotalAmount, quote.Currency
	})

	uc.logger.Info("GetAvailableSlots: generated %d slots for field=%d, date=%s",
		len(slots), req.FieldID, req.Date.Format(domain.DateFormat))

	return &Response{
		FieldID:         req.FieldID,
		Date:            req.Date,
		DurationMinutes: duration,
		Slots:           slots,
	}, nil
}
