package fieldcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

// Cache read-through кеш полей поверх Redis
// Снижает нагрузку на FieldService: расписание и тарифы поля меняются редко,
// а читаются при каждой проверке доступности
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New создает кеш поверх готового клиента Redis
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// GetField возвращает поле из кеша, (nil, nil) при промахе
func (c *Cache) GetField(ctx context.Context, fieldID int64) (*domain.Field, error) {
	data, err := c.client.Get(ctx, fieldKey(fieldID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fieldcache: get field %d: %w", fieldID, err)
	}

	var field domain.Field
	if err := json.Unmarshal(data, &field); err != nil {
		return nil, fmt.Errorf("fieldcache: decode field %d: %w", fieldID, err)
	}
	return &field, nil
}

// SetField сохраняет поле в кеш с TTL
func (c *Cache) SetField(ctx context.Context, field *domain.Field) error {
	payload, err := json.Marshal(field)
	if err != nil {
		return fmt.Errorf("fieldcache: encode field %d: %w", field.ID, err)
	}
	if err := c.client.Set(ctx, fieldKey(field.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("fieldcache: set field %d: %w", field.ID, err)
	}
	return nil
}

// InvalidateField удаляет поле из кеша
func (c *Cache) InvalidateField(ctx context.Context, fieldID int64) error {
	if err := c.client.Del(ctx, fieldKey(fieldID)).Err(); err != nil {
		return fmt.Errorf("fieldcache: invalidate field %d: %w", fieldID, err)
	}
	return nil
}

func fieldKey(fieldID int64) string {
	return fmt.Sprintf("cache:field:%d", fieldID)
}
