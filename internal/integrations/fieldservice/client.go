package fieldservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

// Client клиент для работы с FieldService (каталог полей)
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      FieldCache
	log        Logger
}

// NewClient создает новый экземпляр клиента FieldService
// cache может быть nil, тогда каждый запрос идет напрямую в сервис
func NewClient(baseURL string, timeout time.Duration, cache FieldCache, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
		log:   log,
	}
}

// GetField получает поле по ID, сначала проверяя кеш
func (c *Client) GetField(ctx context.Context, fieldID int64) (*domain.Field, error) {
	if c.cache != nil {
		field, err := c.cache.GetField(ctx, fieldID)
		if err != nil {
			// Проблемы кеша не должны блокировать бронирование
			c.log.Warn("Field cache read failed for field_id=%d: %v", fieldID, err)
		} else if field != nil {
			return field, nil
		}
	}

	field, err := c.fetchField(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetField(ctx, field); err != nil {
			c.log.Warn("Field cache write failed for field_id=%d: %v", fieldID, err)
		}
	}

	return field, nil
}

// fetchField запрашивает поле напрямую из FieldService
func (c *Client) fetchField(ctx context.Context, fieldID int64) (*domain.Field, error) {
	url := fmt.Sprintf("%s/internal/fields/%d", c.baseURL, fieldID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid field ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrFieldNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var payload fieldResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	field, err := payload.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to convert response: %v", ErrInvalidResponse, err)
	}

	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("%w: field %d failed validation: %v", ErrInvalidResponse, fieldID, err)
	}

	return field, nil
}

// GetFieldOrFail получает поле, пробрасывая ErrFieldNotFound как есть
// Любая другая ошибка оборачивается с контекстом и логируется уровнем ERROR,
// чтобы быстрее заметить недоступность каталога
func (c *Client) GetFieldOrFail(ctx context.Context, fieldID int64) (*domain.Field, error) {
	field, err := c.GetField(ctx, fieldID)
	if err != nil {
		if errors.Is(err, ErrFieldNotFound) {
			c.log.Info("Field not found in catalog: field_id=%d", fieldID)
			return nil, err
		}

		c.log.Error("FieldService unavailable for field_id=%d: %v", fieldID, err)
		return nil, fmt.Errorf("%w: field_id=%d, error=%v", ErrInternal, fieldID, err)
	}

	return field, nil
}
