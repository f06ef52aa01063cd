package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	tableReservations = "reservations"
	tableCounters     = "reservation_slot_counters"
)

var columns = []string{
	"id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"reservation_date",
	"reservation_time",
	"party_size",
	"status",
	"table_number",
	"special_requests",
	"admin_notes",
	"expires_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями столов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create атомарно занимает стол в слоте и сохраняет бронирование.
// Счетчик слота увеличивается только если reserved < maxTables, иначе ErrSlotFull.
// Вызывается внутри транзакции: счетчик и строка бронирования пишутся вместе.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation, maxTables int) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	date := res.Date.Format(domain.DateFormat)

	// 1. Гарантируем наличие строки счетчика
	query, args, err := ensureCounterQuery(date, res.Time).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build counter insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, execError("Create - ensure counter", err)
	}

	// 2. Условный инкремент: строка не вернется, если столов не осталось
	query, args, err = reserveTableQuery(date, res.Time, maxTables).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build counter update: %v", ErrBuildQuery, err)
	}

	var reserved int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&reserved); err != nil {
		return nil, reserveTableError(err)
	}

	// 3. Сама запись
	query, args, err = insertReservationQuery(res).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, execError("Create - execute insert", err)
	}

	return res, nil
}

// ListByDate возвращает активные (pending/confirmed) бронирования на дату.
// Внутри транзакции строки блокируются (FOR UPDATE) до конца транзакции.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listByDateQuery(date, dbmetrics.IsInTransaction(ctx)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("ListByDate - execute query", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetByID получает бронирование по ID (внутри транзакции с блокировкой строки)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, execError("GetByID - scan reservation", err)
	}

	return res, nil
}

// List возвращает бронирования по фильтру админки.
// Сортировка: по дате и времени, ближайшие первыми.
func (r *Repository) List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableReservations).
		OrderBy("reservation_date ASC", "reservation_time ASC", "created_at ASC")

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": filter.From.Format(domain.DateFormat)})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": filter.To.Format(domain.DateFormat)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	selectBuilder = selectBuilder.Limit(uint64(limit))
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("List - execute query", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatus обновляет статус бронирования.
// Для статусов, отличных от pending, срок удержания сбрасывается.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableReservations).
		Set("status", status).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})

	if status != domain.StatusPending {
		updateBuilder = updateBuilder.Set("expires_at", nil)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return execError("UpdateStatus - execute update", err)
	}

	return expectAffected(result, "UpdateStatus")
}

// UpdateDetails обновляет номер стола и заметки администратора.
// nil поля не изменяются.
func (r *Repository) UpdateDetails(ctx context.Context, id uuid.UUID, tableNumber *int, adminNotes *string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableReservations).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id})

	if tableNumber != nil {
		updateBuilder = updateBuilder.Set("table_number", *tableNumber)
	}
	if adminNotes != nil {
		updateBuilder = updateBuilder.Set("admin_notes", *adminNotes)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateDetails - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return execError("UpdateDetails - execute update", err)
	}

	return expectAffected(result, "UpdateDetails")
}

// ReleaseSlot освобождает стол в счетчике слота (не опускается ниже нуля)
func (r *Repository) ReleaseSlot(ctx context.Context, date time.Time, t types.TimeString) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := releaseTableQuery(date.Format(domain.DateFormat), t).ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReleaseSlot - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return execError("ReleaseSlot - execute update", err)
	}

	return nil
}

// CancelExpired переводит pending бронирования с expires_at <= now в cancelled
// и освобождает их столы. Повторный вызов ничего не меняет.
func (r *Repository) CancelExpired(ctx context.Context, now time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := cancelExpiredQuery(now).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelExpired - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execError("CancelExpired - execute update", err)
	}
	expired, err := scanReservations(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	for _, res := range expired {
		if err := r.ReleaseSlot(ctx, res.Date, res.Time); err != nil {
			return nil, err
		}
	}

	return expired, nil
}

// Ping проверяет доступность БД (для readyz)
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := dbmetrics.GetExecutor(ctx, r.db).QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return execError("Ping", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var expiresAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.CustomerName,
		&res.CustomerEmail,
		&res.CustomerPhone,
		&res.Date,
		&res.Time,
		&res.PartySize,
		&res.Status,
		&res.TableNumber,
		&res.SpecialRequests,
		&res.AdminNotes,
		&expiresAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		res.ExpiresAt = &expiresAt.Time
	}

	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan reservation: %v", ErrScanRow, err)
		}
		result = append(result, res)
	}

	if err := rows.Err(); err != nil {
		return nil, execError("rows error", err)
	}

	return result, nil
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
