package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus, now time.Time) error
	UpdateDetails(ctx context.Context, id uuid.UUID, tableNumber *int, adminNotes *string, now time.Time) error
	ReleaseSlot(ctx context.Context, date time.Time, t types.TimeString) error
}

// SettingsProvider источник действующих настроек
type SettingsProvider interface {
	Current(ctx context.Context) (*domain.ReservationSettings, error)
}

// EventPublisher публикация событий жизненного цикла
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, r *domain.Reservation, previous domain.ReservationStatus) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
