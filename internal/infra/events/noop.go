package events

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// NoopPublisher используется, когда Kafka выключена в конфиге
type NoopPublisher struct{}

func (NoopPublisher) PublishCreated(context.Context, *domain.Reservation) error { return nil }

func (NoopPublisher) PublishStatusChanged(context.Context, *domain.Reservation, domain.ReservationStatus) error {
	return nil
}

func (NoopPublisher) PublishExpired(context.Context, *domain.Reservation) error { return nil }

func (NoopPublisher) Close() error { return nil }
