package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
)

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRepository(db)

	closer := func() {
		db.Close()
	}

	return repo, mock, closer
}

var (
	repoStart = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	repoEnd   = time.Date(2025, 6, 11, 11, 0, 0, 0, time.UTC)
	repoNow   = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
)

// bookingRow строит строку результата со всеми колонками bookings
func bookingRow(id int64, status domain.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns).AddRow(
		id,                  // id
		"ref-123",           // booking_ref
		int64(7),            // field_id
		int64(100),          // user_id
		repoStart,           // start_time
		repoEnd,             // end_time
		string(status),      // status
		10,                  // participants
		2000.0,              // base_amount
		0.0,                 // discount_percent
		0.0,                 // discount_amount
		2000.0,              // total_amount
		"RUB",               // currency
		"paid",              // payment_status
		2000.0,              // paid_amount
		0.0,                 // refund_amount
		nil, nil, nil, nil,  // cancelled_by, cancelled_actor_id, cancelled_at, cancellation_reason
		nil, nil,            // cancellation_refund, refund_eligible
		nil, nil, nil,       // confirmation_code, confirmed_at, confirmed_by
		nil, nil, nil,       // checkin_at, checkin_method, checkin_verified_by
		nil, nil, nil,       // checkout_at, checkout_condition, checkout_by
		nil, nil, nil, nil, nil, // parent_booking_id, occurrence_number, recur_frequency, recur_interval, recur_end_date
		nil,                 // notes
		repoNow,             // created_at
		repoNow,             // updated_at
	)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id = .+").
		WithArgs(int64(1)).
		WillReturnRows(bookingRow(1, domain.StatusConfirmed))

	booking, err := repo.GetByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), booking.ID)
	assert.Equal(t, "ref-123", booking.BookingRef)
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
	assert.Equal(t, repoStart, booking.Window.Start)
	assert.Equal(t, 2000.0, booking.Pricing.TotalAmount)
	assert.Equal(t, domain.PaymentPaid, booking.Payment.Status)

	// Опциональные группы не заполнены
	assert.Nil(t, booking.Cancellation)
	assert.Nil(t, booking.Confirmation)
	assert.Nil(t, booking.Recurrence)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id = .+").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	_, err := repo.GetByID(context.Background(), 99)

	assert.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByRef(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE booking_ref = .+").
		WithArgs("ref-123").
		WillReturnRows(bookingRow(1, domain.StatusPending))

	booking, err := repo.GetByRef(context.Background(), "ref-123")

	require.NoError(t, err)
	assert.Equal(t, int64(1), booking.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ConflictViolation(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	// Нарушение exclusion constraint на пересечение окон
	mock.ExpectQuery("INSERT INTO bookings .+").
		WillReturnError(&pq.Error{Code: "23P01"})

	booking := &domain.Booking{
		BookingRef:   "ref-456",
		FieldID:      7,
		UserID:       100,
		Window:       domain.Window{Start: repoStart, End: repoEnd},
		Status:       domain.StatusPending,
		Participants: 10,
	}

	_, err := repo.Create(context.Background(), booking)

	assert.ErrorIs(t, err, ErrBookingConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_Success(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	// Код подтверждения, выданный при создании, попадает в INSERT
	mock.ExpectQuery("INSERT INTO bookings .+confirmation_code,confirmed_at,confirmed_by.+ RETURNING id, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(42), repoNow, repoNow))

	booking := &domain.Booking{
		BookingRef:   "ref-456",
		FieldID:      7,
		UserID:       100,
		Window:       domain.Window{Start: repoStart, End: repoEnd},
		Status:       domain.StatusConfirmed,
		Participants: 10,
		Confirmation: &domain.ConfirmationDetails{
			Code:        "code-1",
			ConfirmedAt: repoNow,
		},
	}

	created, err := repo.Create(context.Background(), booking)

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, repoNow, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectExec("UPDATE bookings SET status = .+").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 1, domain.StatusCompleted)
	require.NoError(t, err)

	// Ноль затронутых строк означает, что бронирования нет
	mock.ExpectExec("UPDATE bookings SET status = .+").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), 99, domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Cancel(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectExec("UPDATE bookings SET status = .+").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 1, domain.CancellationDetails{
		CancelledBy:    domain.CancelledByUser,
		ActorID:        100,
		CancelledAt:    repoNow,
		Reason:         "дождь",
		RefundAmount:   2000,
		RefundEligible: true,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetSeriesParent(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectExec("UPDATE bookings SET parent_booking_id = .+").
		WithArgs(int64(10), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetSeriesParent(context.Background(), 10, 10)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByParentID_ExcludesParent(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	// Родитель ссылается сам на себя и исключается из выборки
	mock.ExpectQuery("SELECT .+ FROM bookings WHERE parent_booking_id = .+ AND id <> .+").
		WithArgs(int64(10), int64(10)).
		WillReturnRows(bookingRow(11, domain.StatusConfirmed))

	members, err := repo.GetByParentID(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(11), members[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetStartedActive(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM bookings WHERE status IN .+ AND start_time < .+").
		WillReturnRows(bookingRow(1, domain.StatusInProgress))

	bookings, err := repo.GetStartedActive(context.Background(), repoNow)

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.StatusInProgress, bookings[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
