package settings

import "errors"

var (
	// ErrSettingsNotFound строка настроек еще не создана
	ErrSettingsNotFound = errors.New("settings.repository: settings not found")

	// ErrInvalidBusinessHours business_hours в БД не проходят валидацию
	ErrInvalidBusinessHours = errors.New("settings.repository: invalid business hours")

	// ErrUnavailable БД недоступна
	ErrUnavailable = errors.New("settings.repository: database unavailable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("settings.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("settings.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("settings.repository: failed to scan row")
)
