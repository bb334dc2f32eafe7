package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-FieldBookingService/internal/domain"
	"github.com/m04kA/SMC-FieldBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FieldBookingService/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL, означающие конфликт вставки:
// 23505 - unique_violation, 23P01 - exclusion_violation (constraint на пересечение окон)
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

var bookingColumns = []string{
	"id",
	"booking_ref",
	"field_id",
	"user_id",
	"start_time",
	"end_time",
	"status",
	"participants",
	"base_amount",
	"discount_percent",
	"discount_amount",
	"total_amount",
	"currency",
	"payment_status",
	"paid_amount",
	"refund_amount",
	"cancelled_by",
	"cancelled_actor_id",
	"cancelled_at",
	"cancellation_reason",
	"cancellation_refund",
	"refund_eligible",
	"confirmation_code",
	"confirmed_at",
	"confirmed_by",
	"checkin_at",
	"checkin_method",
	"checkin_verified_by",
	"checkout_at",
	"checkout_condition",
	"checkout_by",
	"parent_booking_id",
	"occurrence_number",
	"recur_frequency",
	"recur_interval",
	"recur_end_date",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Вставка защищена exclusion constraint по (field_id, окно) для активных
// статусов: при нарушении возвращается ErrBookingConflict. Вызывающий usecase
// дополнительно оборачивает проверку доступности и вставку в сериализуемую
// транзакцию - constraint закрывает окно для кода, который этого не делает
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("bookings").
		Columns(
			"booking_ref",
			"field_id",
			"user_id",
			"start_time",
			"end_time",
			"status",
			"participants",
			"base_amount",
			"discount_percent",
			"discount_amount",
			"total_amount",
			"currency",
			"payment_status",
			"paid_amount",
			"refund_amount",
			"confirmation_code",
			"confirmed_at",
			"confirmed_by",
			"parent_booking_id",
			"occurrence_number",
			"recur_frequency",
			"recur_interval",
			"recur_end_date",
			"notes",
		)

	var confCode, confAt, confBy interface{}
	if booking.Confirmation != nil {
		confCode = booking.Confirmation.Code
		confAt = booking.Confirmation.ConfirmedAt
		confBy = booking.Confirmation.ConfirmedBy
	}

	var parentID, occurrence interface{}
	var frequency, interval, endDate interface{}
	if booking.Recurrence != nil {
		// Родительское бронирование серии вставляется без parent_booking_id
		// и получает ссылку на себя отдельным обновлением после вставки
		if booking.Recurrence.ParentBookingID != 0 {
			parentID = booking.Recurrence.ParentBookingID
		}
		occurrence = booking.Recurrence.OccurrenceNumber
		frequency = string(booking.Recurrence.Frequency)
		interval = booking.Recurrence.Interval
		endDate = booking.Recurrence.EndDate
	}

	builder = builder.Values(
		booking.BookingRef,
		booking.FieldID,
		booking.UserID,
		booking.Window.Start,
		booking.Window.End,
		booking.Status,
		booking.Participants,
		booking.Pricing.BaseAmount,
		booking.Pricing.DiscountPercent,
		booking.Pricing.DiscountAmount,
		booking.Pricing.TotalAmount,
		booking.Pricing.Currency,
		booking.Payment.Status,
		booking.Payment.PaidAmount,
		booking.Payment.RefundAmount,
		confCode,
		confAt,
		confBy,
		parentID,
		occurrence,
		frequency,
		interval,
		endDate,
		booking.Notes,
	)

	query, args, err := builder.
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isConflictViolation(err) {
			return nil, ErrBookingConflict
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByFieldWithFilter получает бронирования поля с гибкой фильтрацией
// по периоду, статусу и включению неактивных бронирований
//
// Внутри транзакции с заданным периодом добавляет FOR UPDATE - это блокирует
// конкурентные проверки доступности того же поля до конца транзакции
func (r *Repository) GetByFieldWithFilter(ctx context.Context, filter domain.FieldBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"field_id": filter.FieldID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.StartDate})
	}
	if filter.EndDate != nil {
		// Период задаётся датами включительно - берём всё до конца последнего дня
		endOfDay := filter.EndDate.AddDate(0, 0, 1)
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": endOfDay})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) && filter.StartDate != nil && filter.EndDate != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFieldWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFieldWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByParentID получает все бронирования серии по ID родительского бронирования
// Родительское бронирование ссылается само на себя и из результата исключается
func (r *Repository) GetByParentID(ctx context.Context, parentID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"parent_booking_id": parentID}).
		Where(squirrel.NotEq{"id": parentID}).
		OrderBy("occurrence_number ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByParentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByParentID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateStatus", query, args)
}

// SetSeriesParent проставляет ссылку на родительское бронирование серии
// Первое бронирование серии ссылается само на себя
func (r *Repository) SetSeriesParent(ctx context.Context, id int64, parentID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("parent_booking_id", parentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetSeriesParent - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetSeriesParent", query, args)
}

// Cancel отменяет бронирование, записывая детали отмены и рассчитанный возврат
func (r *Repository) Cancel(ctx context.Context, id int64, c domain.CancellationDetails) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_by", c.CancelledBy).
		Set("cancelled_actor_id", c.ActorID).
		Set("cancelled_at", c.CancelledAt).
		Set("cancellation_reason", c.Reason).
		Set("cancellation_refund", c.RefundAmount).
		Set("refund_eligible", c.RefundEligible).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "Cancel", query, args)
}

// SetConfirmation подтверждает бронирование и сохраняет код подтверждения
func (r *Repository) SetConfirmation(ctx context.Context, id int64, conf domain.ConfirmationDetails) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("confirmation_code", conf.Code).
		Set("confirmed_at", conf.ConfirmedAt).
		Set("confirmed_by", conf.ConfirmedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetConfirmation - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetConfirmation", query, args)
}

// SetCheckIn переводит бронирование в in_progress и сохраняет детали check-in
func (r *Repository) SetCheckIn(ctx context.Context, id int64, ci domain.CheckInDetails) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusInProgress).
		Set("checkin_at", ci.At).
		Set("checkin_method", ci.Method).
		Set("checkin_verified_by", ci.VerifiedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetCheckIn - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetCheckIn", query, args)
}

// SetCheckOut завершает бронирование и сохраняет детали check-out
func (r *Repository) SetCheckOut(ctx context.Context, id int64, co domain.CheckOutDetails) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("checkout_at", co.At).
		Set("checkout_condition", co.Condition).
		Set("checkout_by", co.By).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetCheckOut - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetCheckOut", query, args)
}

// UpdatePayment обновляет платёжное состояние бронирования
// Вызывается из consumer'а событий платёжного сервиса
func (r *Repository) UpdatePayment(ctx context.Context, id int64, p domain.PaymentDetails) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", p.Status).
		Set("paid_amount", p.PaidAmount).
		Set("refund_amount", p.RefundAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePayment - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdatePayment", query, args)
}

// GetByRef получает бронирование по внешнему идентификатору (UUID)
func (r *Repository) GetByRef(ctx context.Context, ref string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_ref": ref}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByRef - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRef - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// isConflictViolation проверяет, что ошибка вызвана нарушением constraint
// на уникальность или пересечение окон
func isConflictViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return code == pgUniqueViolation || code == pgExclusionViolation
	}
	return false
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку результата в доменную модель
// Опциональные группы колонок (отмена, подтверждение, check-in/out, серия)
// собираются в соответствующие структуры, только если заполнены
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	var cancelledBy, cancellationReason sql.NullString
	var cancelledActorID sql.NullInt64
	var cancelledAt sql.NullTime
	var cancellationRefund sql.NullFloat64
	var refundEligible sql.NullBool

	var confirmationCode sql.NullString
	var confirmedAt sql.NullTime
	var confirmedBy sql.NullInt64

	var checkinAt sql.NullTime
	var checkinMethod sql.NullString
	var checkinVerifiedBy sql.NullInt64

	var checkoutAt sql.NullTime
	var checkoutCondition sql.NullString
	var checkoutBy sql.NullInt64

	var parentID, occurrence sql.NullInt64
	var recurFrequency sql.NullString
	var recurInterval sql.NullInt64
	var recurEndDate sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.BookingRef,
		&b.FieldID,
		&b.UserID,
		&b.Window.Start,
		&b.Window.End,
		&b.Status,
		&b.Participants,
		&b.Pricing.BaseAmount,
		&b.Pricing.DiscountPercent,
		&b.Pricing.DiscountAmount,
		&b.Pricing.TotalAmount,
		&b.Pricing.Currency,
		&b.Payment.Status,
		&b.Payment.PaidAmount,
		&b.Payment.RefundAmount,
		&cancelledBy,
		&cancelledActorID,
		&cancelledAt,
		&cancellationReason,
		&cancellationRefund,
		&refundEligible,
		&confirmationCode,
		&confirmedAt,
		&confirmedBy,
		&checkinAt,
		&checkinMethod,
		&checkinVerifiedBy,
		&checkoutAt,
		&checkoutCondition,
		&checkoutBy,
		&parentID,
		&occurrence,
		&recurFrequency,
		&recurInterval,
		&recurEndDate,
		&b.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	if cancelledAt.Valid {
		b.Cancellation = &domain.CancellationDetails{
			CancelledBy:    domain.CancelledBy(cancelledBy.String),
			ActorID:        cancelledActorID.Int64,
			CancelledAt:    cancelledAt.Time,
			Reason:         cancellationReason.String,
			RefundAmount:   cancellationRefund.Float64,
			RefundEligible: refundEligible.Bool,
		}
	}

	if confirmationCode.Valid {
		b.Confirmation = &domain.ConfirmationDetails{
			Code:        confirmationCode.String,
			ConfirmedAt: confirmedAt.Time,
			ConfirmedBy: confirmedBy.Int64,
		}
	}

	if checkinAt.Valid {
		b.CheckIn = &domain.CheckInDetails{
			At:         checkinAt.Time,
			Method:     checkinMethod.String,
			VerifiedBy: checkinVerifiedBy.Int64,
		}
	}

	if checkoutAt.Valid {
		var condition *string
		if checkoutCondition.Valid {
			condition = &checkoutCondition.String
		}
		b.CheckOut = &domain.CheckOutDetails{
			At:        checkoutAt.Time,
			Condition: condition,
			By:        checkoutBy.Int64,
		}
	}

	if parentID.Valid {
		b.Recurrence = &domain.RecurrenceDetails{
			ParentBookingID:  parentID.Int64,
			OccurrenceNumber: int(occurrence.Int64),
			Frequency:        domain.Frequency(recurFrequency.String),
			Interval:         int(recurInterval.Int64),
		}
		if recurEndDate.Valid {
			b.Recurrence.EndDate = recurEndDate.Time
		}
	}

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// ActiveInRange возвращает активные бронирования поля, пересекающиеся с периодом
// Удобная обёртка над GetByFieldWithFilter для проверки доступности
func (r *Repository) ActiveInRange(ctx context.Context, fieldID int64, from, to time.Time) ([]*domain.Booking, error) {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())

	return r.GetByFieldWithFilter(ctx, domain.FieldBookingsFilter{
		FieldID:   fieldID,
		StartDate: &fromDate,
		EndDate:   &toDate,
	})
}

// GetStartedActive возвращает подтвержденные и идущие бронирования,
// начавшиеся до указанного момента. Используется фоновой уборкой для
// перевода просроченных бронирований в completed / no_show
func (r *Repository) GetStartedActive(ctx context.Context, before time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": []string{string(domain.StatusConfirmed), string(domain.StatusInProgress)}}).
		Where(squirrel.Lt{"start_time": before}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStartedActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStartedActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}
