package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-FieldBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
	"github.com/m04kA/SMC-FieldBookingService/internal/service/bookings/models"
)

// Mock структуры

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByRef(ctx context.Context, ref string) (*domain.Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByFieldWithFilter(ctx context.Context, filter domain.FieldBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByParentID(ctx context.Context, parentID int64) ([]*domain.Booking, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetStartedActive(ctx context.Context, before time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id int64, c domain.CancellationDetails) error {
	args := m.Called(ctx, id, c)
	return args.Error(0)
}

func (m *MockBookingRepository) SetConfirmation(ctx context.Context, id int64, conf domain.ConfirmationDetails) error {
	args := m.Called(ctx, id, conf)
	return args.Error(0)
}

func (m *MockBookingRepository) SetCheckIn(ctx context.Context, id int64, ci domain.CheckInDetails) error {
	args := m.Called(ctx, id, ci)
	return args.Error(0)
}

func (m *MockBookingRepository) SetCheckOut(ctx context.Context, id int64, co domain.CheckOutDetails) error {
	args := m.Called(ctx, id, co)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdatePayment(ctx context.Context, id int64, p domain.PaymentDetails) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

type MockFieldClient struct {
	mock.Mock
}

func (m *MockFieldClient) GetField(ctx context.Context, fieldID int64) (*domain.Field, error) {
	args := m.Called(ctx, fieldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Field), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) PublishRefund(ctx context.Context, event paymentledger.RefundEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedClock возвращает фиксированный момент времени
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// Вспомогательные функции

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *MockBookingRepository, fields *MockFieldClient, ledger *MockLedger) *Service {
	return NewService(repo, fields, ledger, fakeTxManager{}, fixedClock{now: testNow}, nopLogger{})
}

func paidBooking(id int64, userID int64, startIn time.Duration) *domain.Booking {
	start := testNow.Add(startIn)
	return &domain.Booking{
		ID:         id,
		BookingRef: "ref-1",
		FieldID:    7,
		UserID:     userID,
		Window:     domain.Window{Start: start, End: start.Add(time.Hour)},
		Status:     domain.StatusConfirmed,
		Pricing:    domain.PricingDetails{TotalAmount: 2000, Currency: "RUB"},
		Payment:    domain.PaymentDetails{Status: domain.PaymentPaid, PaidAmount: 2000},
	}
}

// Тесты

func TestGetByID_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.GetByID(context.Background(), 1, 100, false)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	repo.AssertExpectations(t)
}

func TestGetByID_AccessDenied(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.GetByID(context.Background(), 1, 999, false)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_AdminSeesAnyBooking(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.GetByID(context.Background(), 1, 999, true)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), resp.UserID)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	repo.On("GetByID", mock.Anything, int64(1)).Return(nil, bookingRepo.ErrBookingNotFound)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.GetByID(context.Background(), 1, 100, false)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_FullRefund48HoursBefore(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("Cancel", mock.Anything, int64(1), mock.MatchedBy(func(c domain.CancellationDetails) bool {
		return c.RefundAmount == 2000 && c.RefundEligible && c.CancelledBy == domain.CancelledByUser
	})).Return(nil)
	ledger.On("PublishRefund", mock.Anything, mock.MatchedBy(func(e paymentledger.RefundEvent) bool {
		return e.Amount == 2000 && e.Percent == 100
	})).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})

	assert.NoError(t, err)
	assert.Equal(t, float64(2000), resp.RefundAmount)
	assert.Equal(t, float64(100), resp.RefundPercent)
	repo.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestCancel_HalfRefund18HoursBefore(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 18*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("Cancel", mock.Anything, int64(1), mock.Anything).Return(nil)
	ledger.On("PublishRefund", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})

	assert.NoError(t, err)
	assert.Equal(t, float64(1000), resp.RefundAmount)
	assert.Equal(t, float64(50), resp.RefundPercent)
}

func TestCancel_NoRefund6HoursBefore(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 6*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("Cancel", mock.Anything, int64(1), mock.MatchedBy(func(c domain.CancellationDetails) bool {
		return c.RefundAmount == 0 && !c.RefundEligible
	})).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})

	assert.NoError(t, err)
	assert.Equal(t, float64(0), resp.RefundAmount)
	// Нет возврата - нет события в журнале
	ledger.AssertNotCalled(t, "PublishRefund", mock.Anything, mock.Anything)
}

func TestCancel_CompletedBookingRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, -3*time.Hour)
	booking.Status = domain.StatusCompleted
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})

	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_AdminCancelsForeignBooking(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("Cancel", mock.Anything, int64(1), mock.MatchedBy(func(c domain.CancellationDetails) bool {
		return c.CancelledBy == domain.CancelledByAdmin && c.ActorID == 999
	})).Return(nil)
	ledger.On("PublishRefund", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 999, IsAdmin: true})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCancel_SeriesCancelsRemaining(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	parent := paidBooking(10, 100, 48*time.Hour)
	parent.Recurrence = &domain.RecurrenceDetails{ParentBookingID: 10, OccurrenceNumber: 1}

	second := paidBooking(11, 100, 7*24*time.Hour)
	second.Recurrence = &domain.RecurrenceDetails{ParentBookingID: 10, OccurrenceNumber: 2}

	third := paidBooking(12, 100, 14*24*time.Hour)
	third.Status = domain.StatusCompleted // Уже завершено - не трогаем
	third.Recurrence = &domain.RecurrenceDetails{ParentBookingID: 10, OccurrenceNumber: 3}

	repo.On("GetByID", mock.Anything, int64(10)).Return(parent, nil)
	repo.On("GetByParentID", mock.Anything, int64(10)).Return([]*domain.Booking{second, third}, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("Cancel", mock.Anything, int64(10), mock.Anything).Return(nil)
	repo.On("Cancel", mock.Anything, int64(11), mock.Anything).Return(nil)
	ledger.On("PublishRefund", mock.Anything, mock.Anything).Return(nil).Twice()

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 100, CancelSeries: true})

	assert.NoError(t, err)
	assert.Equal(t, 2, resp.CancelledCount)
	assert.Equal(t, float64(4000), resp.RefundAmount)
	repo.AssertNotCalled(t, "Cancel", mock.Anything, int64(12), mock.Anything)
	repo.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestConfirm_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	booking.Status = domain.StatusPending
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	repo.On("SetConfirmation", mock.Anything, int64(1), mock.MatchedBy(func(c domain.ConfirmationDetails) bool {
		return c.Code != "" && c.ConfirmedBy == 999
	})).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: 999, IsAdmin: true})

	assert.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.NotNil(t, resp.ConfirmationCode)
	repo.AssertExpectations(t)
}

func TestConfirm_IdempotentReturnsExistingCode(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	booking.Confirmation = &domain.ConfirmationDetails{Code: "existing-code", ConfirmedAt: testNow.Add(-time.Hour), ConfirmedBy: 999}
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: 999, IsAdmin: true})

	assert.NoError(t, err)
	assert.Equal(t, "existing-code", *resp.ConfirmationCode)
	repo.AssertNotCalled(t, "SetConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_NonAdminRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: 100})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestConfirm_CancelledRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	// Отменённое бронирование нельзя вернуть к жизни подтверждением
	booking := paidBooking(1, 100, 48*time.Hour)
	booking.Status = domain.StatusCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: 999, IsAdmin: true})

	assert.ErrorIs(t, err, ErrCannotConfirm)
	repo.AssertNotCalled(t, "SetConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	// Слот уже начался, но ещё не закончился - опоздавший может зайти
	booking := paidBooking(1, 100, -30*time.Minute)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	repo.On("SetCheckIn", mock.Anything, int64(1), mock.MatchedBy(func(ci domain.CheckInDetails) bool {
		return ci.Method == "qr" && ci.At.Equal(testNow)
	})).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.CheckIn(context.Background(), 1, &models.CheckInRequest{UserID: 100, Method: "qr"})

	assert.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)
	repo.AssertExpectations(t)
}

func TestCheckIn_AfterEndRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, -2*time.Hour) // Окно длится час - уже закончилось
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.CheckIn(context.Background(), 1, &models.CheckInRequest{UserID: 100})

	assert.ErrorIs(t, err, ErrCannotCheckIn)
}

func TestCheckIn_CancelledRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	// Отменённое бронирование не начинается, даже если окно ещё идет
	booking := paidBooking(1, 100, -30*time.Minute)
	booking.Status = domain.StatusCancelled
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.CheckIn(context.Background(), 1, &models.CheckInRequest{UserID: 100, Method: "qr"})

	assert.ErrorIs(t, err, ErrCannotCheckIn)
	repo.AssertNotCalled(t, "SetCheckIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckOut_Success(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, -30*time.Minute)
	booking.Status = domain.StatusInProgress
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)
	repo.On("SetCheckOut", mock.Anything, int64(1), mock.Anything).Return(nil)

	svc := newTestService(repo, fields, ledger)
	resp, err := svc.CheckOut(context.Background(), 1, &models.CheckOutRequest{UserID: 100})

	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
}

func TestCheckOut_NotInProgressRejected(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	repo.On("GetByID", mock.Anything, int64(1)).Return(booking, nil)

	svc := newTestService(repo, fields, ledger)
	_, err := svc.CheckOut(context.Background(), 1, &models.CheckOutRequest{UserID: 100})

	assert.ErrorIs(t, err, ErrCannotCheckOut)
}

func TestApplyPaymentCaptured_AutoConfirmsPending(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	booking := paidBooking(1, 100, 48*time.Hour)
	booking.Status = domain.StatusPending
	booking.Payment = domain.PaymentDetails{Status: domain.PaymentPending}

	repo.On("GetByRef", mock.Anything, "ref-1").Return(booking, nil)
	repo.On("UpdatePayment", mock.Anything, int64(1), mock.MatchedBy(func(p domain.PaymentDetails) bool {
		return p.Status == domain.PaymentPaid && p.PaidAmount == 2000
	})).Return(nil)
	repo.On("SetConfirmation", mock.Anything, int64(1), mock.Anything).Return(nil)

	svc := newTestService(repo, fields, ledger)
	err := svc.ApplyPaymentCaptured(context.Background(), "ref-1", 2000)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSweepExpired(t *testing.T) {
	repo := new(MockBookingRepository)
	fields := new(MockFieldClient)
	ledger := new(MockLedger)

	// Идущее бронирование закончилось два часа назад
	overdue := paidBooking(1, 100, -3*time.Hour)
	overdue.Status = domain.StatusInProgress

	// Подтвержденное без прибытия, начало час назад, grace 30 минут
	noShow := paidBooking(2, 100, -time.Hour)

	// Подтвержденное, начало 10 минут назад - grace ещё не вышел
	fresh := paidBooking(3, 100, -10*time.Minute)

	repo.On("GetStartedActive", mock.Anything, testNow).Return([]*domain.Booking{overdue, noShow, fresh}, nil)
	fields.On("GetField", mock.Anything, int64(7)).Return(&domain.Field{ID: 7}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), domain.StatusCompleted).Return(nil)
	repo.On("UpdateStatus", mock.Anything, int64(2), domain.StatusNoShow).Return(nil)

	svc := newTestService(repo, fields, ledger)
	err := svc.SweepExpired(context.Background())

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, int64(3), mock.Anything)
	repo.AssertExpectations(t)
}
