package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByRef(ctx context.Context, ref string) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByFieldWithFilter(ctx context.Context, filter domain.FieldBookingsFilter) ([]*domain.Booking, error)
	GetByParentID(ctx context.Context, parentID int64) ([]*domain.Booking, error)
	GetStartedActive(ctx context.Context, before time.Time) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, c domain.CancellationDetails) error
	SetConfirmation(ctx context.Context, id int64, conf domain.ConfirmationDetails) error
	SetCheckIn(ctx context.Context, id int64, ci domain.CheckInDetails) error
	SetCheckOut(ctx context.Context, id int64, co domain.CheckOutDetails) error
	UpdatePayment(ctx context.Context, id int64, p domain.PaymentDetails) error
}

// FieldServiceClient интерфейс клиента каталога полей
type FieldServiceClient interface {
	GetField(ctx context.Context, fieldID int64) (*domain.Field, error)
}

// LedgerProducer интерфейс продюсера платежного журнала
type LedgerProducer interface {
	PublishRefund(ctx context.Context, event paymentledger.RefundEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider отдает текущее время, в тестах подменяется фиксированным
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
