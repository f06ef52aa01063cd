package get_availability

import "errors"

// ErrInternal возвращается при внутренних ошибках usecase.
// Нарушения политики возвращаются как ошибки пакета availability.
var ErrInternal = errors.New("get_availability: internal error")
