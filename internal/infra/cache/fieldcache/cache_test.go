package fieldcache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/ptr"
	"github.com/m04kA/SMC-FieldBookingService/pkg/types"
)

func testField() *domain.Field {
	open := types.TimeString("09:00")
	close := types.TimeString("22:00")
	return &domain.Field{
		ID:    42,
		Name:  "Арена Север",
		Sport: "football",
		Schedule: domain.WeekSchedule{
			Monday: domain.DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close},
		},
		Pricing: domain.FieldPricing{
			HourlyRate:     2000,
			Currency:       "RUB",
			PeakHourlyRate: ptr.Ptr(3000.0),
		},
		MinBookingMinutes:  60,
		MaxBookingMinutes:  180,
		AdvanceBookingDays: 30,
	}
}

func TestGetField_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	field := testField()
	payload, err := json.Marshal(field)
	require.NoError(t, err)

	mock.ExpectGet("cache:field:42").SetVal(string(payload))

	cache := New(db, 10*time.Minute)
	got, err := cache.GetField(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, field.ID, got.ID)
	assert.Equal(t, field.Name, got.Name)
	assert.Equal(t, field.Pricing.HourlyRate, got.Pricing.HourlyRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetField_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectGet("cache:field:42").RedisNil()

	cache := New(db, 10*time.Minute)
	got, err := cache.GetField(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetField(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	field := testField()
	payload, err := json.Marshal(field)
	require.NoError(t, err)

	mock.ExpectSet("cache:field:42", payload, 10*time.Minute).SetVal("OK")

	cache := New(db, 10*time.Minute)
	require.NoError(t, cache.SetField(ctx, field))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateField(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectDel("cache:field:42").SetVal(1)

	cache := New(db, 10*time.Minute)
	require.NoError(t, cache.InvalidateField(ctx, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
