package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-FieldBookingService/internal/infra/storage/booking"
	fieldClient "github.com/m04kA/SMC-FieldBookingService/internal/integrations/fieldservice"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
	"github.com/m04kA/SMC-FieldBookingService/internal/pricing"
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings/models"

	"github.com/google/uuid"
)

// Service сервис для работы с жизненным циклом бронирований
type Service struct {
	bookingRepo BookingRepository
	fieldClient FieldServiceClient
	ledger      LedgerProducer
	txManager   TransactionManager
	clock       TimeProvider
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	fieldClient FieldServiceClient,
	ledger LedgerProducer,
	txManager TransactionManager,
	clock TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		fieldClient: fieldClient,
		ledger:      ledger,
		txManager:   txManager,
		clock:       clock,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только свои бронирования, администратор - любые
// Перед отдачей статус актуализируется: истёкшие бронирования переводятся
// в completed / no_show
func (s *Service) GetByID(ctx context.Context, id int64, userID int64, isAdmin bool) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkOwnerAccess(booking, userID, isAdmin); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	booking = s.refreshStatus(ctx, booking)

	return models.FromDomainBooking(booking), nil
}

// GetByRef получает бронирование по внешнему идентификатору
func (s *Service) GetByRef(ctx context.Context, ref string, userID int64, isAdmin bool) (*models.BookingResponse, error) {
	s.logger.Info("GetByRef: fetching booking ref=%s for user=%d", ref, userID)

	booking, err := s.bookingRepo.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByRef: booking ref=%s not found", ref)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByRef: repository error for booking ref=%s: %v", ref, err)
		return nil, fmt.Errorf("%w: GetByRef - repository error: %v", ErrInternal, err)
	}

	if err := s.checkOwnerAccess(booking, userID, isAdmin); err != nil {
		s.logger.Warn("GetByRef: access denied for user=%d to booking ref=%s", userID, ref)
		return nil, err
	}

	booking = s.refreshStatus(ctx, booking)

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	for i, b := range bookings {
		bookings[i] = s.refreshStatus(ctx, b)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetFieldBookings получает бронирования поля с гибкой фильтрацией
// по периоду, статусу и включению неактивных бронирований
// Доступно только администраторам
//
// Примеры использования:
// - Все активные бронирования поля: указать только FieldID
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Бронирования за период: StartDate и EndDate указывают на разные даты
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отменённые: IncludeInactive = true
func (s *Service) GetFieldBookings(ctx context.Context, req *models.GetFieldBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetFieldBookings: fetching bookings for field=%d, user=%d", req.FieldID, req.UserID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if !req.IsAdmin {
		s.logger.Warn("GetFieldBookings: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetFieldBookings: invalid filter for field=%d: %v", req.FieldID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByFieldWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetFieldBookings: repository error for field=%d: %v", req.FieldID, err)
		return nil, fmt.Errorf("%w: GetFieldBookings - repository error: %v", ErrInternal, err)
	}

	for i, b := range bookings {
		bookings[i] = s.refreshStatus(ctx, b)
	}

	s.logger.Info("GetFieldBookings: successfully fetched %d bookings for field=%d", len(bookings), req.FieldID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и рассчитывает возврат
// Пользователь может отменить только своё бронирование, администратор - любое
// Возврат считается от оплаченной суммы по условиям поля в зависимости от
// количества часов до начала
//
// При CancelSeries=true отменяются все оставшиеся отменяемые бронирования серии,
// возврат считается для каждого отдельно
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if err := s.checkOwnerAccess(booking, req.UserID, req.IsAdmin); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	booking = s.refreshStatus(ctx, booking)

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	if req.CancelSeries && booking.IsSeriesMember() {
		return s.cancelSeries(ctx, booking, req)
	}

	field := s.fieldForRefund(ctx, booking.FieldID)
	now := s.clock.Now()
	refund := pricing.Refund(field, booking.Payment.PaidAmount, booking.HoursUntilStart(now))

	details := s.cancellationDetails(booking, req, refund, now)
	if err := s.bookingRepo.Cancel(ctx, bookingID, details); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.publishRefund(ctx, booking, refund, req.CancellationReason)

	booking.Status = domain.StatusCancelled
	booking.Cancellation = &details

	s.logger.Info("Cancel: successfully cancelled booking id=%d, refund=%.2f (%.0f%%)",
		bookingID, refund.Amount, refund.Percent)

	return &models.CancelResponse{
		Booking:       *models.FromDomainBooking(booking),
		RefundAmount:  refund.Amount,
		RefundPercent: refund.Percent,
	}, nil
}

// cancelSeries отменяет все оставшиеся отменяемые бронирования серии
// Отмена выполняется в одной транзакции, события возврата публикуются после
// её завершения
func (s *Service) cancelSeries(ctx context.Context, booking *domain.Booking, req *models.CancelBookingRequest) (*models.CancelResponse, error) {
	parentID := booking.Recurrence.ParentBookingID
	s.logger.Info("Cancel: cancelling series parent_id=%d by user=%d", parentID, req.UserID)

	members, err := s.seriesMembers(ctx, parentID)
	if err != nil {
		return nil, err
	}

	field := s.fieldForRefund(ctx, booking.FieldID)
	now := s.clock.Now()

	type cancelled struct {
		booking *domain.Booking
		refund  pricing.RefundQuote
	}
	var toCancel []cancelled
	var totalRefund float64

	for _, member := range members {
		if !member.CanBeCancelled() {
			continue
		}
		refund := pricing.Refund(field, member.Payment.PaidAmount, member.HoursUntilStart(now))
		toCancel = append(toCancel, cancelled{booking: member, refund: refund})
		totalRefund += refund.Amount
	}

	if len(toCancel) == 0 {
		s.logger.Warn("Cancel: series parent_id=%d has no cancellable bookings", parentID)
		return nil, ErrCannotCancel
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		for _, c := range toCancel {
			details := s.cancellationDetails(c.booking, req, c.refund, now)
			if err := s.bookingRepo.Cancel(ctx, c.booking.ID, details); err != nil {
				return fmt.Errorf("cancel booking id=%d: %w", c.booking.ID, err)
			}
			c.booking.Status = domain.StatusCancelled
			c.booking.Cancellation = &details
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Cancel: series cancellation failed for parent_id=%d: %v", parentID, err)
		return nil, fmt.Errorf("%w: Cancel - series cancellation: %v", ErrInternal, err)
	}

	for _, c := range toCancel {
		s.publishRefund(ctx, c.booking, c.refund, req.CancellationReason)
	}

	s.logger.Info("Cancel: successfully cancelled %d bookings of series parent_id=%d, total refund=%.2f",
		len(toCancel), parentID, totalRefund)

	requested := booking
	for _, c := range toCancel {
		if c.booking.ID == booking.ID {
			requested = c.booking
			break
		}
	}

	return &models.CancelResponse{
		Booking:        *models.FromDomainBooking(requested),
		RefundAmount:   totalRefund,
		CancelledCount: len(toCancel),
	}, nil
}

// Confirm подтверждает бронирование и выдает код подтверждения
// Повторное подтверждение возвращает уже выданный код без ошибки
// Доступно только администраторам
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, req.UserID)

	if !req.IsAdmin {
		s.logger.Warn("Confirm: access denied for user=%d", req.UserID)
		return nil, ErrAccessDenied
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Confirm: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Confirm: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	// Идемпотентность: повторный confirm возвращает существующий код
	if booking.IsConfirmed() {
		s.logger.Info("Confirm: booking id=%d already confirmed", bookingID)
		return models.FromDomainBooking(booking), nil
	}

	if !booking.CanBeConfirmed() {
		s.logger.Warn("Confirm: booking id=%d cannot be confirmed, status=%s", bookingID, booking.Status)
		return nil, ErrCannotConfirm
	}

	conf := domain.ConfirmationDetails{
		Code:        uuid.NewString(),
		ConfirmedAt: s.clock.Now(),
		ConfirmedBy: req.UserID,
	}

	if err := s.bookingRepo.SetConfirmation(ctx, bookingID, conf); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Confirm: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusConfirmed
	booking.Confirmation = &conf

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// CheckIn отмечает прибытие по подтвержденному бронированию
// Допускается в любой момент до окончания слота: опоздание сокращает игровое
// время, но не отменяет бронирование
func (s *Service) CheckIn(ctx context.Context, bookingID int64, req *models.CheckInRequest) (*models.BookingResponse, error) {
	s.logger.Info("CheckIn: checking in booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("CheckIn: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CheckIn: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
	}

	if err := s.checkOwnerAccess(booking, req.UserID, req.IsAdmin); err != nil {
		s.logger.Warn("CheckIn: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	now := s.clock.Now()
	if !booking.CanCheckIn(now) {
		s.logger.Warn("CheckIn: booking id=%d cannot be checked in, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCheckIn
	}

	method := req.Method
	if method == "" {
		method = "manual"
	}

	ci := domain.CheckInDetails{
		At:         now,
		Method:     method,
		VerifiedBy: req.UserID,
	}

	if err := s.bookingRepo.SetCheckIn(ctx, bookingID, ci); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CheckIn: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusInProgress
	booking.CheckIn = &ci

	s.logger.Info("CheckIn: successfully checked in booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// CheckOut завершает идущее бронирование
func (s *Service) CheckOut(ctx context.Context, bookingID int64, req *models.CheckOutRequest) (*models.BookingResponse, error) {
	s.logger.Info("CheckOut: checking out booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("CheckOut: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CheckOut: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CheckOut - repository error: %v", ErrInternal, err)
	}

	if err := s.checkOwnerAccess(booking, req.UserID, req.IsAdmin); err != nil {
		s.logger.Warn("CheckOut: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	if !booking.CanCheckOut() {
		s.logger.Warn("CheckOut: booking id=%d cannot be checked out, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCheckOut
	}

	co := domain.CheckOutDetails{
		At:        s.clock.Now(),
		Condition: req.Condition,
		By:        req.UserID,
	}

	if err := s.bookingRepo.SetCheckOut(ctx, bookingID, co); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CheckOut: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CheckOut - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusCompleted
	booking.CheckOut = &co

	s.logger.Info("CheckOut: successfully checked out booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// ApplyPaymentCaptured применяет подтверждение оплаты из платежного журнала
// Оплата pending-бронирования автоматически подтверждает его
func (s *Service) ApplyPaymentCaptured(ctx context.Context, bookingRef string, amount float64) error {
	booking, err := s.bookingRepo.GetByRef(ctx, bookingRef)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("ApplyPaymentCaptured: booking ref=%s not found", bookingRef)
			return ErrBookingNotFound
		}
		return fmt.Errorf("%w: ApplyPaymentCaptured - repository error: %v", ErrInternal, err)
	}

	payment := booking.Payment
	payment.Status = domain.PaymentPaid
	payment.PaidAmount = amount

	if err := s.bookingRepo.UpdatePayment(ctx, booking.ID, payment); err != nil {
		return fmt.Errorf("%w: ApplyPaymentCaptured - repository error: %v", ErrInternal, err)
	}

	// Оплаченное pending-бронирование подтверждаем от имени системы
	if booking.CanBeConfirmed() {
		conf := domain.ConfirmationDetails{
			Code:        uuid.NewString(),
			ConfirmedAt: s.clock.Now(),
			ConfirmedBy: domain.SystemActorID,
		}
		if err := s.bookingRepo.SetConfirmation(ctx, booking.ID, conf); err != nil {
			s.logger.Error("ApplyPaymentCaptured: failed to auto-confirm booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: ApplyPaymentCaptured - auto-confirm: %v", ErrInternal, err)
		}
		s.logger.Info("ApplyPaymentCaptured: auto-confirmed booking id=%d after payment", booking.ID)
	}

	return nil
}

// ApplyPaymentFailed помечает оплату бронирования как неуспешную
func (s *Service) ApplyPaymentFailed(ctx context.Context, bookingRef string) error {
	booking, err := s.bookingRepo.GetByRef(ctx, bookingRef)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("ApplyPaymentFailed: booking ref=%s not found", bookingRef)
			return ErrBookingNotFound
		}
		return fmt.Errorf("%w: ApplyPaymentFailed - repository error: %v", ErrInternal, err)
	}

	payment := booking.Payment
	payment.Status = domain.PaymentFailed

	if err := s.bookingRepo.UpdatePayment(ctx, booking.ID, payment); err != nil {
		return fmt.Errorf("%w: ApplyPaymentFailed - repository error: %v", ErrInternal, err)
	}

	return nil
}

// RunSweep периодически переводит просроченные бронирования в конечные статусы.
// Останавливается при отмене контекста
func (s *Service) RunSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("RunSweep: started with interval %s", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("RunSweep: stopped")
			return
		case <-ticker.C:
			if err := s.SweepExpired(ctx); err != nil {
				s.logger.Error("RunSweep: sweep failed: %v", err)
			}
		}
	}
}

// SweepExpired однократно переводит просроченные бронирования:
// in_progress после окончания слота -> completed,
// confirmed без прибытия после grace-периода -> no_show
func (s *Service) SweepExpired(ctx context.Context) error {
	now := s.clock.Now()

	stale, err := s.bookingRepo.GetStartedActive(ctx, now)
	if err != nil {
		return fmt.Errorf("%w: SweepExpired - repository error: %v", ErrInternal, err)
	}

	var completed, noShows int
	for _, b := range stale {
		switch {
		case b.Status == domain.StatusInProgress && b.IsPastEnd(now):
			if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusCompleted); err != nil {
				s.logger.Error("SweepExpired: failed to complete booking id=%d: %v", b.ID, err)
				continue
			}
			completed++
		case b.IsNoShow(now, s.noShowGrace(ctx, b.FieldID)):
			if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusNoShow); err != nil {
				s.logger.Error("SweepExpired: failed to mark no-show booking id=%d: %v", b.ID, err)
				continue
			}
			noShows++
		}
	}

	if completed > 0 || noShows > 0 {
		s.logger.Info("SweepExpired: completed=%d, no_show=%d", completed, noShows)
	}
	return nil
}

// Вспомогательные методы

// checkOwnerAccess проверяет, что пользователь имеет доступ к бронированию
func (s *Service) checkOwnerAccess(booking *domain.Booking, userID int64, isAdmin bool) error {
	if booking.UserID == userID || isAdmin {
		return nil
	}
	return ErrAccessDenied
}

// refreshStatus актуализирует статус бронирования на чтении.
// Просроченные переходы выполняются лениво, чтобы клиент никогда не видел
// "идущее" бронирование, которое давно закончилось
func (s *Service) refreshStatus(ctx context.Context, b *domain.Booking) *domain.Booking {
	now := s.clock.Now()

	switch {
	case b.Status == domain.StatusInProgress && b.IsPastEnd(now):
		if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusCompleted); err != nil {
			s.logger.Error("refreshStatus: failed to complete booking id=%d: %v", b.ID, err)
			return b
		}
		b.Status = domain.StatusCompleted
	case b.Status == domain.StatusConfirmed && now.After(b.Window.Start) && b.IsNoShow(now, s.noShowGrace(ctx, b.FieldID)):
		if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusNoShow); err != nil {
			s.logger.Error("refreshStatus: failed to mark no-show booking id=%d: %v", b.ID, err)
			return b
		}
		b.Status = domain.StatusNoShow
	}

	return b
}

// noShowGrace возвращает grace-период поля в минутах
// При недоступности каталога используется стандартный период
func (s *Service) noShowGrace(ctx context.Context, fieldID int64) int {
	field, err := s.fieldClient.GetField(ctx, fieldID)
	if err != nil {
		s.logger.Warn("noShowGrace: field %d unavailable, using default grace: %v", fieldID, err)
		return domain.DefaultNoShowGraceMinutes
	}
	return field.NoShowGrace()
}

// fieldForRefund возвращает поле для расчёта возврата
// При недоступности каталога возврат считается по стандартным условиям
func (s *Service) fieldForRefund(ctx context.Context, fieldID int64) *domain.Field {
	field, err := s.fieldClient.GetField(ctx, fieldID)
	if err != nil {
		if !errors.Is(err, fieldClient.ErrFieldNotFound) {
			s.logger.Warn("fieldForRefund: field %d unavailable, using default refund tiers: %v", fieldID, err)
		}
		return &domain.Field{ID: fieldID}
	}
	return field
}

// seriesMembers возвращает родительское бронирование и все бронирования серии
func (s *Service) seriesMembers(ctx context.Context, parentID int64) ([]*domain.Booking, error) {
	parent, err := s.bookingRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: seriesMembers - repository error: %v", ErrInternal, err)
	}

	children, err := s.bookingRepo.GetByParentID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("%w: seriesMembers - repository error: %v", ErrInternal, err)
	}

	members := make([]*domain.Booking, 0, len(children)+1)
	members = append(members, parent)
	members = append(members, children...)
	return members, nil
}

func (s *Service) cancellationDetails(b *domain.Booking, req *models.CancelBookingRequest, refund pricing.RefundQuote, now time.Time) domain.CancellationDetails {
	cancelledBy := domain.CancelledByUser
	if b.UserID != req.UserID && req.IsAdmin {
		cancelledBy = domain.CancelledByAdmin
	}

	return domain.CancellationDetails{
		CancelledBy:    cancelledBy,
		ActorID:        req.UserID,
		CancelledAt:    now,
		Reason:         req.CancellationReason,
		RefundAmount:   refund.Amount,
		RefundEligible: refund.Eligible,
	}
}

// publishRefund публикует событие возврата в платежный журнал
// Сбой публикации не откатывает отмену: журнал переиграет событие по
// данным бронирования при сверке
func (s *Service) publishRefund(ctx context.Context, b *domain.Booking, refund pricing.RefundQuote, reason string) {
	if b.Payment.Status != domain.PaymentPaid || refund.Amount <= 0 {
		return
	}

	event := paymentledger.RefundEvent{
		BookingRef: b.BookingRef,
		UserID:     b.UserID,
		Amount:     refund.Amount,
		Percent:    refund.Percent,
		Currency:   b.Pricing.Currency,
		Reason:     reason,
	}

	if err := s.ledger.PublishRefund(ctx, event); err != nil {
		s.logger.Error("publishRefund: failed to publish refund for booking ref=%s: %v", b.BookingRef, err)
	}
}
