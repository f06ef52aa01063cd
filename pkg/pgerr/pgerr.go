package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые важны для бизнес-логики
const (
	codeSerializationFailure  = "40001"
	codeDeadlockDetected      = "40P01"
	codeUniqueViolation       = "23505"
	classConnectionException  = "08"
	classInsufficientRes      = "53"
	classOperatorIntervention = "57"
)

// IsSerializationFailure true, если транзакция проиграла конкурентной транзакции
// и может быть повторена
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
	}
	return false
}

// IsUniqueViolation true при нарушении уникального ограничения
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeUniqueViolation
	}
	return false
}

// IsUnavailable true, если БД недоступна (сеть, пул, остановка сервера)
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := string(pqErr.Code.Class())
		return class == classConnectionException ||
			class == classInsufficientRes ||
			class == classOperatorIntervention
	}

	return false
}
