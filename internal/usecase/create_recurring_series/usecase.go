package create_recurring_series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-FieldBookingService/internal/availability"
	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-FieldBookingService/internal/infra/storage/booking"
	fieldClient "github.com/m04kA/SMC-FieldBookingService/internal/integrations/fieldservice"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
	"github.com/m04kA/SMC-FieldBookingService/internal/pricing"
)

// UseCase use case для создания серии повторяющихся бронирований
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

// Execute выполняет use case создания серии бронирований
//
// Правило повторения детерминированно разворачивается в список окон. Вся серия
// создается в одной сериализуемой транзакции: в режиме all_or_nothing любое
// недоступное вхождение откатывает серию целиком, в режиме partial недоступные
// вхождения пропускаются и возвращаются с причиной
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateSeries: user=%d, field=%d, first window=%s - %s, freq=%s/%d until %s, mode=%s",
		req.UserID, req.FieldID,
		req.StartTime.Format("2006-01-02 15:04"), req.EndTime.Format("15:04"),
		req.Frequency, req.Interval, req.EndDate.Format(domain.DateFormat), req.Mode)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateSeries: validation failed: %v", err)
		return nil, err
	}

	mode, err := seriesMode(req.Mode)
	if err != nil {
		uc.logger.Warn("CreateSeries: invalid mode: %v", err)
		return nil, err
	}

	rule := domain.RecurrenceRule{
		Frequency: domain.Frequency(req.Frequency),
		Interval:  req.Interval,
		EndDate:   req.EndDate,
	}
	if err := rule.Validate(); err != nil {
		uc.logger.Warn("CreateSeries: invalid recurrence rule: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем поле из каталога
	field, err := uc.fieldClient.GetField(ctx, req.FieldID)
	if err != nil {
		if errors.Is(err, fieldClient.ErrFieldNotFound) {
			uc.logger.Warn("CreateSeries: field id=%d not found", req.FieldID)
			return nil, ErrFieldNotFound
		}
		uc.logger.Error("CreateSeries: failed to get field id=%d: %v", req.FieldID, err)
		return nil, fmt.Errorf("%w: failed to get field: %v", ErrInternal, err)
	}

	// 4. Разворачиваем правило в список окон
	template := domain.Window{Start: req.StartTime, End: req.EndTime}
	occurrences := rule.Expand(template)

	if len(occurrences) > domain.MaxSeriesOccurrences {
		uc.logger.Warn("CreateSeries: rule expands to %d occurrences, limit is %d",
			len(occurrences), domain.MaxSeriesOccurrences)
		return nil, fmt.Errorf("%w: %d occurrences, limit is %d",
			ErrTooManyOccurrences, len(occurrences), domain.MaxSeriesOccurrences)
	}

	uc.logger.Info("CreateSeries: rule expands to %d occurrences", len(occurrences))

	var created []CreatedOccurrence
	var skipped []SkippedOccurrence
	var createdBookings []*domain.Booking
	var parentID int64
	var totalAmount float64

	// 5. Создаем серию в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created = created[:0]
		skipped = skipped[:0]
		createdBookings = createdBookings[:0]
		parentID = 0
		totalAmount = 0

		for i, window := range occurrences {
			number := i + 1

			// 5.1. Проверяем окно против расписания поля на конкретную дату
			if err := uc.checkOccurrence(txCtx, field, window, now); err != nil {
				if mode == domain.SeriesAllOrNothing {
					uc.logger.Warn("CreateSeries: occurrence %d (%s) unavailable, aborting series: %v",
						number, window.Start.Format(domain.DateFormat), err)
					return fmt.Errorf("%w: occurrence %d (%s): %v",
						ErrSeriesConflict, number, window.Start.Format(domain.DateFormat), err)
				}
				skipped = append(skipped, SkippedOccurrence{
					OccurrenceNumber: number,
					StartTime:        window.Start,
					EndTime:          window.End,
					Reason:           err.Error(),
				})
				continue
			}

			// 5.2. Создаем бронирование вхождения
			// Вхождения, как и одиночные бронирования, подтверждаются
			// сразу при создании
			quote := pricing.Quote(field, window, req.Participants)
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
				Recurrence: &domain.RecurrenceDetails{
					ParentBookingID:  parentID,
					OccurrenceNumber: number,
					Frequency:        rule.Frequency,
					Interval:         rule.Interval,
					EndDate:          rule.EndDate,
				},
				Notes: req.Notes,
			}

			stored, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				if errors.Is(err, bookingRepo.ErrBookingConflict) {
					if mode == domain.SeriesAllOrNothing {
						return fmt.Errorf("%w: occurrence %d (%s): overlap",
							ErrSeriesConflict, number, window.Start.Format(domain.DateFormat))
					}
					skipped = append(skipped, SkippedOccurrence{
						OccurrenceNumber: number,
						StartTime:        window.Start,
						EndTime:          window.End,
						Reason:           "window overlaps an active booking",
					})
					continue
				}
				uc.logger.Error("CreateSeries: failed to create occurrence %d: %v", number, err)
				return fmt.Errorf("%w: failed to create occurrence %d: %v", ErrInternal, number, err)
			}

			// 5.3. Первое созданное вхождение становится родителем серии
			// и ссылается само на себя
			if parentID == 0 {
				parentID = stored.ID
				stored.Recurrence.ParentBookingID = parentID
				if err := uc.bookingRepo.SetSeriesParent(txCtx, stored.ID, parentID); err != nil {
					uc.logger.Error("CreateSeries: failed to link series parent: %v", err)
					return fmt.Errorf("%w: failed to link series parent: %v", ErrInternal, err)
				}
			}

			createdBookings = append(createdBookings, stored)
			totalAmount += stored.Pricing.TotalAmount
			created = append(created, CreatedOccurrence{
				BookingID:        stored.ID,
				BookingRef:       stored.BookingRef,
				OccurrenceNumber: number,
				StartTime:        window.Start,
				EndTime:          window.End,
				TotalAmount:      stored.Pricing.TotalAmount,
			})
		}

		if len(created) == 0 {
			return ErrNoOccurrencesAvailable
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateSeries: successfully created series parent_id=%d: %d booked, %d skipped, total=%.2f",
		parentID, len(created), len(skipped), totalAmount)

	// 6. Публикуем запросы на списание после фиксации транзакции
	for _, b := range createdBookings {
		uc.publishCharge(ctx, b)
	}

	return &Response{
		SeriesID:    parentID,
		Mode:        string(mode),
		Status:      string(domain.StatusConfirmed),
		Created:     created,
		Skipped:     skipped,
		TotalAmount: totalAmount,
		Currency:    field.Pricing.Currency,
	}, nil
}

// checkOccurrence проверяет доступность одного вхождения серии:
// расписание поля на дату вхождения и пересечения с активными бронированиями
func (uc *UseCase) checkOccurrence(ctx context.Context, field *domain.Field, window domain.Window, now time.Time) error {
	if err := availability.CheckWindow(field, window, now); err != nil {
		return err
	}

	existing, err := uc.bookingRepo.ActiveInRange(ctx, field.ID, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
	}

	return availability.CheckConflicts(window, existing)
}

// publishCharge публикует запрос на списание в платежный журнал
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
		uc.logger.Error("CreateSeries: failed to publish charge for booking ref=%s: %v", b.BookingRef, err)
	}
}
