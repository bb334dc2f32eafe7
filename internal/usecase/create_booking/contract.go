package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/internal/integrations/paymentledger"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ActiveInRange(ctx context.Context, fieldID int64, from, to time.Time) ([]*domain.Booking, error)
}

// FieldServiceClient интерфейс клиента каталога полей
type FieldServiceClient interface {
	GetField(ctx context.Context, fieldID int64) (*domain.Field, error)
}

// LedgerProducer интерфейс продюсера платежного журнала
type LedgerProducer interface {
	PublishCharge(ctx context.Context, event paymentledger.ChargeEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
