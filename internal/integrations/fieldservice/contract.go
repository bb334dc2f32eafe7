package fieldservice

import (
	"context"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// FieldCache кеш полей для снижения нагрузки на FieldService
// Get возвращает (nil, nil) при промахе кеша
type FieldCache interface {
	GetField(ctx context.Context, fieldID int64) (*domain.Field, error)
	SetField(ctx context.Context, field *domain.Field) error
	InvalidateField(ctx context.Context, fieldID int64) error
}
