package settings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// SettingsRepository интерфейс хранилища настроек
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.ReservationSettings, error)
	Save(ctx context.Context, s *domain.ReservationSettings) error
}

// SettingsCache интерфейс кеша настроек (может быть nil, если кеш выключен)
type SettingsCache interface {
	Get(ctx context.Context) (*domain.ReservationSettings, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, s *domain.ReservationSettings, generation int64) error
	Invalidate(ctx context.Context) error
}

// Metrics интерфейс метрик кеша
type Metrics interface {
	ObserveSettingsCache(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
