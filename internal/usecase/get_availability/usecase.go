package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// UseCase use case для получения доступных слотов
type UseCase struct {
	reservationRepo ReservationRepository
	settings        SettingsProvider
	txManager       TransactionManager
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	settings SettingsProvider,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		reservationRepo: reservationRepo,
		settings:        settings,
		txManager:       txManager,
		location:        location,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Только чтение: ответ может устареть к моменту создания брони.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	date := domain.DateIn(req.Date, uc.location)
	uc.logger.Info("GetAvailability: date=%s, party=%d", date.Format(domain.DateFormat), req.PartySize)

	// 1. Настройки
	settings, err := uc.settings.Current(ctx)
	if err != nil {
		if errors.Is(err, settingsService.ErrUnavailable) {
			uc.logger.Error("GetAvailability: settings unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", availability.ErrUnavailable, err)
		}
		uc.logger.Error("GetAvailability: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: failed to load settings: %v", ErrInternal, err)
	}

	// 2. Активные брони на дату
	var reservations []*domain.Reservation
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var listErr error
		reservations, listErr = uc.reservationRepo.ListByDate(txCtx, date)
		return listErr
	})
	if err != nil {
		if errors.Is(err, reservationRepo.ErrUnavailable) || errors.Is(err, txmanager.ErrUnavailable) {
			uc.logger.Error("GetAvailability: store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", availability.ErrUnavailable, err)
		}
		uc.logger.Error("GetAvailability: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 3. Расчет
	slots, err := availability.GetAvailability(date, req.PartySize, settings, reservations, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Warn("GetAvailability: rejected: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailability: %d slots for %s (%d reservations)",
		len(slots), date.Format(domain.DateFormat), len(reservations))

	return &Response{
		Date:      date,
		PartySize: req.PartySize,
		Slots:     slots,
	}, nil
}
