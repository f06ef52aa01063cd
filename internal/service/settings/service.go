package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/cache"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
)

const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// Service сервис настроек бронирования.
// Чтение идет через кеш, изменение инвалидирует кеш.
type Service struct {
	repo         SettingsRepository
	cache        SettingsCache
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек.
// cache может быть nil - тогда настройки читаются из БД на каждый запрос.
func NewService(
	repo SettingsRepository,
	cache SettingsCache,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Current возвращает действующие настройки: кеш -> БД -> заполнение кеша.
// Если строки настроек нет, возвращаются значения по умолчанию.
func (s *Service) Current(ctx context.Context) (*domain.ReservationSettings, error) {
	// 1. Кеш; поколение запоминаем до чтения БД, чтобы не положить в кеш устаревшую запись
	fill := false
	var generation int64
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			s.observeCache(cacheHit)
			return cached, nil
		}
		// Ошибку Redis не пробрасываем, идем в БД
		if errors.Is(err, cache.ErrCacheMiss) {
			s.observeCache(cacheMiss)
			generation, err = s.cache.Generation(ctx)
			fill = err == nil
		} else {
			s.observeCache(cacheError)
			s.logger.Warn("Current: settings cache unavailable: %v", err)
		}
	}

	// 2. БД
	current, err := s.repo.Get(ctx)
	if err != nil {
		switch {
		case errors.Is(err, settingsRepo.ErrSettingsNotFound):
			s.logger.Info("Current: settings row not found, using defaults")
			return domain.DefaultSettings(), nil
		case errors.Is(err, settingsRepo.ErrUnavailable):
			s.logger.Error("Current: settings store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		default:
			s.logger.Error("Current: repository error: %v", err)
			return nil, fmt.Errorf("%w: Current - repository error: %v", ErrInternal, err)
		}
	}

	// 3. Заполняем кеш
	if fill {
		if err := s.cache.Set(ctx, current, generation); err != nil {
			s.logger.Warn("Current: failed to fill settings cache: %v", err)
		}
	}

	return current, nil
}

// Get возвращает настройки для API
func (s *Service) Get(ctx context.Context) (*models.SettingsResponse, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomain(current), nil
}

// Update применяет частичное изменение, валидирует полную запись,
// сохраняет её и инвалидирует кеш
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: updating reservation settings")

	// 1. Текущие настройки (из БД, мимо кеша)
	current, err := s.repo.Get(ctx)
	if err != nil {
		switch {
		case errors.Is(err, settingsRepo.ErrSettingsNotFound):
			current = domain.DefaultSettings()
		case errors.Is(err, settingsRepo.ErrUnavailable):
			s.logger.Error("Update: settings store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		default:
			s.logger.Error("Update: repository error: %v", err)
			return nil, fmt.Errorf("%w: Update - get settings: %v", ErrInternal, err)
		}
	}

	// 2. Применяем изменения
	if err := req.ApplyTo(current); err != nil {
		s.logger.Warn("Update: invalid time value: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Валидируем запись целиком
	if err := current.Validate(); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Сохраняем
	current.UpdatedAt = s.timeProvider.Now().UTC()
	if err := s.repo.Save(ctx, current); err != nil {
		if errors.Is(err, settingsRepo.ErrUnavailable) {
			s.logger.Error("Update: settings store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - save settings: %v", ErrInternal, err)
	}

	// 5. Инвалидируем кеш
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Error("Update: failed to invalidate settings cache: %v", err)
		}
	}

	s.logger.Info("Update: settings saved, max_tables=%d, slot_duration=%d, window=%d days",
		current.MaxTables, current.SlotDurationMinutes, current.BookingWindowDays)

	return models.FromDomain(current), nil
}

func (s *Service) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.ObserveSettingsCache(result)
	}
}
