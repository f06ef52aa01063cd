package reservation

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ensureCounterQuery создает строку счетчика слота, если её еще нет
func ensureCounterQuery(date string, t types.TimeString) squirrel.InsertBuilder {
	return psqlbuilder.Insert(tableCounters).
		Columns("reservation_date", "reservation_time", "reserved").
		Values(date, t, 0).
		Suffix("ON CONFLICT (reservation_date, reservation_time) DO NOTHING")
}

// reserveTableQuery условный инкремент: строка не вернется, если reserved >= maxTables
func reserveTableQuery(date string, t types.TimeString, maxTables int) squirrel.UpdateBuilder {
	return psqlbuilder.Update(tableCounters).
		Set("reserved", squirrel.Expr("reserved + 1")).
		Where(squirrel.Eq{"reservation_date": date, "reservation_time": t}).
		Where(squirrel.Lt{"reserved": maxTables}).
		Suffix("RETURNING reserved")
}

// reserveTableError: отсутствие строки после условного UPDATE означает, что столов не осталось
func reserveTableError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSlotFull
	}
	return execError("Create - increment counter", err)
}

// releaseTableQuery освобождает стол (не ниже нуля)
func releaseTableQuery(date string, t types.TimeString) squirrel.UpdateBuilder {
	return psqlbuilder.Update(tableCounters).
		Set("reserved", squirrel.Expr("GREATEST(reserved - 1, 0)")).
		Where(squirrel.Eq{"reservation_date": date, "reservation_time": t})
}

func insertReservationQuery(res *domain.Reservation) squirrel.InsertBuilder {
	return psqlbuilder.Insert(tableReservations).
		Columns(columns...).
		Values(
			res.ID,
			res.CustomerName,
			res.CustomerEmail,
			res.CustomerPhone,
			res.Date.Format(domain.DateFormat),
			res.Time,
			res.PartySize,
			res.Status,
			res.TableNumber,
			res.SpecialRequests,
			res.AdminNotes,
			res.ExpiresAt,
			res.CreatedAt,
			res.UpdatedAt,
		)
}

// listByDateQuery активные брони даты; forUpdate блокирует строки до конца транзакции
func listByDateQuery(date time.Time, forUpdate bool) squirrel.SelectBuilder {
	q := psqlbuilder.Select(columns...).
		From(tableReservations).
		Where(squirrel.Eq{
			"reservation_date": date.Format(domain.DateFormat),
			"status":           statusStrings(domain.ActiveStatuses),
		}).
		OrderBy("reservation_time ASC", "created_at ASC")
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

func cancelExpiredQuery(now time.Time) squirrel.UpdateBuilder {
	return psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusCancelled).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		Suffix("RETURNING " + strings.Join(columns, ", "))
}
