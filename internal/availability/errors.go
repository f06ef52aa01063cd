package availability

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest некорректная форма или диапазон запроса
	ErrInvalidRequest = errors.New("availability: invalid request")

	// ErrTooSoon нарушено минимальное время до начала брони
	ErrTooSoon = errors.New("availability: too soon")

	// ErrOutOfWindow дата за пределами окна бронирования
	ErrOutOfWindow = errors.New("availability: out of booking window")

	// ErrSlotFull в слоте не осталось столов
	ErrSlotFull = errors.New("availability: slot is full")

	// ErrValidation некорректные контактные данные
	ErrValidation = errors.New("availability: validation error")

	// ErrConflict хранилище отклонило запись из-за параллельной транзакции
	ErrConflict = errors.New("availability: write conflict")

	// ErrUnavailable хранилище недоступно
	ErrUnavailable = errors.New("availability: store unavailable")
)

// ViolationError нарушение политики с указанием нарушенной границы.
// errors.Is работает через Unwrap с sentinel-ошибкой.
type ViolationError struct {
	Err     error
	Field   string
	Bound   string
	Message string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

func violation(kind error, field, bound, format string, args ...interface{}) error {
	return &ViolationError{
		Err:     kind,
		Field:   field,
		Bound:   bound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Violation достает ViolationError из цепочки
func Violation(err error) (*ViolationError, bool) {
	var v *ViolationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
