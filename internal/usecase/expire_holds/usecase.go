package expire_holds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// UseCase отменяет pending брони, у которых истек hold, и освобождает их столы.
// Повторный запуск с тем же now ничего не меняет.
type UseCase struct {
	reservationRepo ReservationRepository
	publisher       EventPublisher
	metrics         Metrics
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		publisher:       publisher,
		metrics:         metrics,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет один проход sweep
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Отмена и освобождение счетчиков в одной транзакции
	var expired []*domain.Reservation
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		list, err := uc.reservationRepo.CancelExpired(txCtx, now)
		if err != nil {
			return err
		}
		expired = list
		return nil
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrUnavailable) || errors.Is(err, txmanager.ErrUnavailable) {
			uc.logger.Error("ExpireHolds: store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		uc.logger.Error("ExpireHolds: failed to cancel expired holds: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 2. События после коммита
	ids := make([]uuid.UUID, 0, len(expired))
	for _, r := range expired {
		ids = append(ids, r.ID)
		if err := uc.publisher.PublishExpired(ctx, r); err != nil {
			uc.logger.Error("ExpireHolds: failed to publish event for reservation id=%s: %v", r.ID, err)
		}
	}

	uc.metrics.ObserveHoldsExpired(len(ids))
	if len(ids) > 0 {
		uc.logger.Info("ExpireHolds: cancelled %d expired holds", len(ids))
	}

	return &Response{CancelledIDs: ids}, nil
}
