package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation, maxTables int) (*domain.Reservation, error)
}

// SettingsProvider источник действующих настроек
type SettingsProvider interface {
	Current(ctx context.Context) (*domain.ReservationSettings, error)
}

// EventPublisher публикация события о новой брони
type EventPublisher interface {
	PublishCreated(ctx context.Context, r *domain.Reservation) error
}

// Metrics доменные счетчики записи
type Metrics interface {
	ObserveReservationCreated(status string)
	ObserveReservationRejected(reason string)
	ObserveWriteConflict()
	ObserveSlotOccupancy(percent float64)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
