package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// Service административный сервис бронирований
type Service struct {
	reservationRepo ReservationRepository
	settings        SettingsProvider
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	settings SettingsProvider,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		settings:        settings,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s", id)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError("GetByID", id, err)
	}

	return models.FromDomainReservation(reservation), nil
}

// List возвращает бронирования по фильтру
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.ReservationListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		s.logger.Warn("List: from=%s is after to=%s",
			filter.From.Format(domain.DateFormat), filter.To.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	if filter.Limit < 0 || filter.Limit > domain.MaxListLimit || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit must be between 0 and %d, offset must not be negative",
			ErrInvalidInput, domain.MaxListLimit)
	}

	list, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		return nil, s.repoError("List", uuid.Nil, err)
	}

	s.logger.Info("List: fetched %d reservations", len(list))
	return models.FromDomainReservationList(list), nil
}

// UpdateStatus переводит бронирование в новый статус по жизненному циклу.
// Переход из pending/confirmed в cancelled/completed освобождает стол в той же транзакции.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateStatus: updating reservation id=%s to status=%s", id, req.Status)

	// 1. Валидируем статус
	next, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for reservation id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	now := s.timeProvider.Now()
	var previous domain.ReservationStatus
	var result *domain.Reservation

	// 2. Меняем статус и счетчик слота в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		reservation, err := s.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			return s.repoError("UpdateStatus", id, err)
		}

		if !reservation.CanTransitionTo(next) {
			s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for reservation id=%s",
				reservation.Status, next, id)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, next)
		}
		if next == domain.StatusConfirmed && reservation.IsExpired(now) {
			s.logger.Warn("UpdateStatus: hold of reservation id=%s expired at %s", id, reservation.ExpiresAt)
			return fmt.Errorf("%w: hold expired", ErrInvalidTransition)
		}

		if err := s.reservationRepo.UpdateStatus(txCtx, id, next, now); err != nil {
			return s.repoError("UpdateStatus", id, err)
		}

		if reservation.IsActive() && !next.ConsumesCapacity() {
			if err := s.reservationRepo.ReleaseSlot(txCtx, reservation.Date, reservation.Time); err != nil {
				return s.repoError("UpdateStatus", id, err)
			}
		}

		previous = reservation.Status
		reservation.Status = next
		reservation.UpdatedAt = now
		if next != domain.StatusPending {
			reservation.ExpiresAt = nil
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, s.txError("UpdateStatus", err)
	}

	// 3. Событие после коммита
	if err := s.publisher.PublishStatusChanged(ctx, result, previous); err != nil {
		s.logger.Error("UpdateStatus: failed to publish event for reservation id=%s: %v", id, err)
	}

	s.logger.Info("UpdateStatus: reservation id=%s %s -> %s", id, previous, next)
	return models.FromDomainReservation(result), nil
}

// UpdateDetails назначает стол и/или заметки администратора.
// Номер стола должен быть в диапазоне 1..max_tables.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, req *models.UpdateDetailsRequest) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateDetails: updating reservation id=%s", id)

	// 1. Валидируем вход
	if req.TableNumber == nil && req.AdminNotes == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if req.AdminNotes != nil && len([]rune(*req.AdminNotes)) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: admin notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.TableNumber != nil {
		settings, err := s.settings.Current(ctx)
		if err != nil {
			s.logger.Error("UpdateDetails: failed to load settings: %v", err)
			if errors.Is(err, settingsService.ErrUnavailable) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return nil, fmt.Errorf("%w: UpdateDetails - load settings: %v", ErrInternal, err)
		}
		if *req.TableNumber < 1 || *req.TableNumber > settings.MaxTables {
			s.logger.Warn("UpdateDetails: table=%d out of range 1..%d", *req.TableNumber, settings.MaxTables)
			return nil, fmt.Errorf("%w: table number must be between 1 and %d", ErrInvalidInput, settings.MaxTables)
		}
	}

	now := s.timeProvider.Now()
	var result *domain.Reservation

	// 2. Обновляем и перечитываем
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.reservationRepo.UpdateDetails(txCtx, id, req.TableNumber, req.AdminNotes, now); err != nil {
			return s.repoError("UpdateDetails", id, err)
		}
		reservation, err := s.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			return s.repoError("UpdateDetails", id, err)
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, s.txError("UpdateDetails", err)
	}

	s.logger.Info("UpdateDetails: reservation id=%s updated", id)
	return models.FromDomainReservation(result), nil
}

// repoError переводит ошибки репозитория в ошибки сервиса
func (s *Service) repoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		s.logger.Warn("%s: reservation id=%s not found", op, id)
		return ErrReservationNotFound
	case errors.Is(err, reservationRepo.ErrUnavailable):
		s.logger.Error("%s: store unavailable: %v", op, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// txError сохраняет ошибки сервиса и классифицирует ошибки транзакции
func (s *Service) txError(op string, err error) error {
	switch {
	case errors.Is(err, ErrReservationNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, txmanager.ErrUnavailable):
		s.logger.Error("%s: store unavailable: %v", op, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		s.logger.Error("%s: transaction error: %v", op, err)
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}
