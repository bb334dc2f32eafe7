package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldBookingService/internal/availability"
	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-FieldBookingService/internal/infra/storage/booking"
	fieldClient "github.com/m04kA/SMC-FieldBookingService/internal/integrations/fieldservice"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
	"github.com/m04kA/SMC-FieldBookingService/internal/pricing"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	fieldClient  FieldServiceClient
	ledger       LedgerProducer
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fieldClient FieldServiceClient,
	ledger LedgerProducer,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		fieldClient:  fieldClient,
		ledger:       ledger,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка доступности и вставка выполняются в сериализуемой транзакции:
// конкурентные запросы на пересекающиеся окна одного поля не могут пройти оба
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, field=%d, window=%s - %s, participants=%d",
		req.UserID, req.FieldID,
		req.StartTime.Format("2006-01-02 15:04"), req.EndTime.Format("15:04"), req.Participants)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем поле из каталога
	field, err := uc.fieldClient.GetField(ctx, req.FieldID)
	if err != nil {
		if errors.Is(err, fieldClient.ErrFieldNotFound) {
			uc.logger.Warn("CreateBooking: field id=%d not found", req.FieldID)
			return nil, ErrFieldNotFound
		}
		uc.logger.Error("CreateBooking: failed to get field id=%d: %v", req.FieldID, err)
		return nil, fmt.Errorf("%w: failed to get field: %v", ErrInternal, err)
	}

	window := domain.Window{Start: req.StartTime, End: req.EndTime}

	// 4. Проверяем окно против расписания и ограничений поля
	// Проверка чистая, выносим её из транзакции
	if err := availability.CheckWindow(field, window, now); err != nil {
		uc.logger.Warn("CreateBooking: window rejected for field id=%d: %v", req.FieldID, err)
		return nil, err
	}

	// 5. Считаем цену: снимок фиксируется при создании
	quote := pricing.Quote(field, window, req.Participants)

	// Переменная для хранения результата
	var result *domain.Booking

	// 6. Проверка пересечений и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Активные бронирования поля за период с блокировкой (FOR UPDATE)
		existing, err := uc.bookingRepo.ActiveInRange(txCtx, req.FieldID, window.Start, window.End)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get active bookings: %v", err)
			return fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
		}

		// 6.2. Проверяем пересечение окон (полуоткрытые интервалы:
		// бронирование впритык к существующему конфликтом не считается)
		if err := availability.CheckConflicts(window, existing); err != nil {
			uc.logger.Warn("CreateBooking: window overlaps an active booking for field id=%d", req.FieldID)
			return ErrSlotNotAvailable
		}

		// 6.3. Создаем бронирование
		// Поля не требуют ручного одобрения, поэтому бронирование сразу
		// подтверждается и получает код подтверждения. Статус pending
		// зарезервирован за бронированиями, ожидающими одобрения
		booking := &domain.Booking{
			BookingRef:   uuid.NewString(),
			FieldID:      req.FieldID,
			UserID:       req.UserID,
			Window:       window,
			Status:       domain.StatusConfirmed,
			Participants: req.Participants,
			Pricing:      quote,
			Payment: domain.PaymentDetails{
				Status: domain.PaymentPending,
			},
			Confirmation: &domain.ConfirmationDetails{
				Code:        uuid.NewString(),
				ConfirmedAt: now,
				ConfirmedBy: domain.SystemActorID,
			},
			Notes: req.Notes,
		}

		// 6.4. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Exclusion constraint в БД - последняя линия защиты от двойного
			// бронирования, если транзакция прошла мимо FOR UPDATE
			if errors.Is(err, bookingRepo.ErrBookingConflict) {
				uc.logger.Warn("CreateBooking: insert rejected by overlap constraint for field id=%d", req.FieldID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, ref=%s, total=%.2f %s",
		result.ID, result.BookingRef, result.Pricing.TotalAmount, result.Pricing.Currency)

	// 7. Публикуем запрос на списание после фиксации транзакции
	uc.publishCharge(ctx, result)

	// Конвертируем в response
	return &Response{
		ID:               result.ID,
		BookingRef:       result.BookingRef,
		FieldID:          result.FieldID,
		UserID:           result.UserID,
		StartTime:        result.Window.Start,
		EndTime:          result.Window.End,
		Status:           string(result.Status),
		ConfirmationCode: result.Confirmation.Code,
		Participants:     result.Participants,
		BaseAmount:       result.Pricing.BaseAmount,
		DiscountPercent:  result.Pricing.DiscountPercent,
		DiscountAmount:   result.Pricing.DiscountAmount,
		TotalAmount:      result.Pricing.TotalAmount,
		Currency:         result.Pricing.Currency,
		PaymentStatus:    string(result.Payment.Status),
		Notes:            result.Notes,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}, nil
}

// publishCharge публикует запрос на списание в платежный журнал
// Сбой публикации не откатывает бронирование: журнал сверяется с БД
// и переигрывает пропущенные события
func (uc *UseCase) publishCharge(ctx context.Context, b *domain.Booking) {
	event := paymentledger.ChargeEvent{
		BookingRef: b.BookingRef,
		FieldID:    b.FieldID,
		UserID:     b.UserID,
		Amount:     b.Pricing.TotalAmount,
		Currency:   b.Pricing.Currency,
		StartTime:  b.Window.Start,
		EndTime:    b.Window.End,
	}

	if err := uc.ledger.PublishCharge(ctx, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish charge for booking ref=%s: %v", b.BookingRef, err)
	}
}
