package reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/pkg/pgerr"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrSlotFull счетчик слота достиг max_tables, вставка отклонена
	ErrSlotFull = errors.New("reservation.repository: slot is full")

	// ErrConflict конфликт сериализации, транзакцию можно повторить
	ErrConflict = errors.New("reservation.repository: serialization conflict")

	// ErrUnavailable БД недоступна
	ErrUnavailable = errors.New("reservation.repository: database unavailable")

	// ErrDuplicate бронирование с таким id уже существует
	ErrDuplicate = errors.New("reservation.repository: duplicate reservation")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)

// execError классифицирует ошибку драйвера
func execError(op string, err error) error {
	switch {
	case pgerr.IsSerializationFailure(err):
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	case pgerr.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	case pgerr.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s: %v", ErrDuplicate, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
	}
}
