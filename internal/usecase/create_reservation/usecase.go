package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// maxAttempts первая попытка и один повтор после конфликта сериализации
const maxAttempts = 2

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	settings        SettingsProvider
	publisher       EventPublisher
	metrics         Metrics
	txManager       TransactionManager
	validator       *ContactValidator
	location        *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// location - часовой пояс ресторана, в нем интерпретируются дата и время слота.
func NewUseCase(
	reservationRepo ReservationRepository,
	settings SettingsProvider,
	publisher EventPublisher,
	metrics Metrics,
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
		publisher:       publisher,
		metrics:         metrics,
		txManager:       txManager,
		validator:       NewContactValidator(),
		location:        location,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Повторная проверка слота и вставка идут в одной сериализуемой транзакции,
// поэтому два параллельных запроса на последний стол не пройдут оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	date := domain.DateIn(req.Date, uc.location)
	uc.logger.Info("CreateReservation: date=%s, time=%s, party=%d",
		date.Format(domain.DateFormat), req.Time, req.PartySize)

	// 1. Контактные данные
	if err := uc.validator.Validate(req); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			uc.logger.Warn("CreateReservation: validation failed: %v", verrs)
			uc.observeRejected("validation")
			return nil, fmt.Errorf("%w: %w", availability.ErrValidation, verrs)
		}
		uc.logger.Error("CreateReservation: validator error: %v", err)
		return nil, fmt.Errorf("%w: validate contacts: %v", ErrInternal, err)
	}

	// 2. Формат времени слота, дальше используется только каноничное HH:MM
	slotTime, err := types.NewTimeStringFromString(string(req.Time))
	if err != nil {
		uc.logger.Warn("CreateReservation: invalid time=%q: %v", req.Time, err)
		uc.observeRejected("invalid_request")
		return nil, &availability.ViolationError{
			Err:     availability.ErrInvalidRequest,
			Field:   "time",
			Message: fmt.Sprintf("time must be in HH:MM format: %v", err),
		}
	}
	normalized := *req
	normalized.Time = slotTime
	req = &normalized

	// 3. Настройки
	settings, err := uc.settings.Current(ctx)
	if err != nil {
		if errors.Is(err, settingsService.ErrUnavailable) {
			uc.logger.Error("CreateReservation: settings unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", availability.ErrUnavailable, err)
		}
		uc.logger.Error("CreateReservation: failed to load settings: %v", err)
		return nil, fmt.Errorf("%w: load settings: %v", ErrInternal, err)
	}

	// 4. Проверка и запись; при конфликте сериализации транзакция повторяется один раз
	var (
		result *domain.Reservation
		slot   domain.TimeSlot
	)
	for attempt := 1; ; attempt++ {
		result, slot, err = uc.write(ctx, req, date, settings)
		if err == nil {
			break
		}
		if !isConflict(err) {
			return nil, uc.translateError(err)
		}

		uc.metrics.ObserveWriteConflict()
		if attempt >= maxAttempts {
			uc.logger.Warn("CreateReservation: conflict persisted after %d attempts for %s %s",
				attempt, date.Format(domain.DateFormat), req.Time)
			uc.observeRejected("slot_full")
			return nil, &availability.ViolationError{
				Err:     availability.ErrSlotFull,
				Field:   "time",
				Bound:   req.Time.String(),
				Message: fmt.Sprintf("no tables left at %s", req.Time),
			}
		}
		uc.logger.Warn("CreateReservation: write conflict, retrying (attempt %d): %v", attempt, err)
	}

	// 5. Событие после коммита
	if err := uc.publisher.PublishCreated(ctx, result); err != nil {
		uc.logger.Error("CreateReservation: failed to publish event for reservation id=%s: %v", result.ID, err)
	}

	uc.metrics.ObserveReservationCreated(string(result.Status))
	slot.RemainingCapacity--
	uc.metrics.ObserveSlotOccupancy(slot.OccupancyRate(settings.MaxTables))
	uc.logger.Info("CreateReservation: created reservation id=%s, status=%s", result.ID, result.Status)

	return toResponse(result), nil
}

// write одна попытка: перечитать брони даты, проверить слот, атомарно вставить
func (uc *UseCase) write(
	ctx context.Context,
	req *Request,
	date time.Time,
	settings *domain.ReservationSettings,
) (*domain.Reservation, domain.TimeSlot, error) {
	var (
		result *domain.Reservation
		booked domain.TimeSlot
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := uc.timeProvider.Now()

		// 4.1. Активные брони на дату с блокировкой (FOR UPDATE)
		reservations, err := uc.reservationRepo.ListByDate(txCtx, date)
		if err != nil {
			return err
		}

		// 4.2. Повторная проверка слота на актуальных данных
		slot, err := availability.CheckSlot(date, req.Time, req.PartySize, settings, reservations, now)
		if err != nil {
			return err
		}
		uc.logger.Info("CreateReservation: slot %s available, %d/%d tables free",
			req.Time, slot.RemainingCapacity, settings.MaxTables)

		// 4.3. Новая бронь
		reservation := &domain.Reservation{
			ID:              uuid.New(),
			CustomerName:    strings.TrimSpace(req.CustomerName),
			CustomerEmail:   strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
			CustomerPhone:   NormalizePhone(req.CustomerPhone),
			Date:            date,
			Time:            req.Time,
			PartySize:       req.PartySize,
			Status:          domain.StatusPending,
			SpecialRequests: trimOptional(req.SpecialRequests),
			CreatedAt:       now.UTC(),
			UpdatedAt:       now.UTC(),
		}
		if settings.AutoConfirm {
			reservation.Status = domain.StatusConfirmed
		} else {
			expiresAt := now.UTC().Add(time.Duration(settings.HoldMinutes) * time.Minute)
			reservation.ExpiresAt = &expiresAt
		}

		// 4.4. Условная вставка: счетчик слота не превысит max_tables
		created, err := uc.reservationRepo.Create(txCtx, reservation, settings.MaxTables)
		if err != nil {
			return err
		}

		result = created
		booked = slot
		return nil
	})

	return result, booked, err
}

// translateError переводит ошибки хранилища и транзакции в ошибки политики
func (uc *UseCase) translateError(err error) error {
	if v, ok := availability.Violation(err); ok {
		uc.logger.Warn("CreateReservation: rejected: %v", v)
		uc.observeRejected(rejectionReason(v.Err))
		return err
	}

	switch {
	case errors.Is(err, reservationRepo.ErrSlotFull):
		uc.logger.Warn("CreateReservation: slot counter refused the insert")
		uc.observeRejected("slot_full")
		return &availability.ViolationError{
			Err:     availability.ErrSlotFull,
			Field:   "time",
			Message: "no tables left for the requested slot",
		}
	case errors.Is(err, reservationRepo.ErrUnavailable), errors.Is(err, txmanager.ErrUnavailable):
		uc.logger.Error("CreateReservation: store unavailable: %v", err)
		return fmt.Errorf("%w: %v", availability.ErrUnavailable, err)
	default:
		uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
		return fmt.Errorf("%w: create reservation: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observeRejected(reason string) {
	uc.metrics.ObserveReservationRejected(reason)
}

func isConflict(err error) bool {
	return errors.Is(err, reservationRepo.ErrConflict) ||
		errors.Is(err, txmanager.ErrSerializationFailure) ||
		errors.Is(err, availability.ErrConflict)
}

func rejectionReason(kind error) string {
	switch {
	case errors.Is(kind, availability.ErrSlotFull):
		return "slot_full"
	case errors.Is(kind, availability.ErrTooSoon):
		return "too_soon"
	case errors.Is(kind, availability.ErrOutOfWindow):
		return "out_of_window"
	default:
		return "invalid_request"
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toResponse(r *domain.Reservation) *Response {
	return &Response{
		ID:              r.ID.String(),
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Date:            r.Date,
		Time:            r.Time,
		PartySize:       r.PartySize,
		Status:          string(r.Status),
		SpecialRequests: r.SpecialRequests,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
