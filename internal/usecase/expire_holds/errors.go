package expire_holds

import "errors"

var (
	// ErrUnavailable хранилище недоступно, sweep будет повторен на следующем тике
	ErrUnavailable = errors.New("expire_holds: store unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("expire_holds: internal error")
)
