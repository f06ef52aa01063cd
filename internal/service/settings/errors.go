package settings

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных настройках
	ErrInvalidInput = errors.New("settings: invalid input data")

	// ErrUnavailable хранилище настроек недоступно
	ErrUnavailable = errors.New("settings: store unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("settings: internal error")
)
