package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	settingsKey   = "settings:reservation"
	generationKey = "settings:reservation:generation"
)

var (
	// ErrCacheMiss ключа нет в кеше
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCache ошибка обращения к Redis
	ErrCache = errors.New("cache: redis error")
)

// RedisClient подмножество *redis.Client, которое использует кеш
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// SettingsCache кеш настроек бронирования в Redis.
// Запись живет ttl, при изменении настроек удаляется явно.
//
// Каждая запись помечена поколением, прочитанным до похода в БД (Generation).
// Invalidate увеличивает поколение, поэтому запись, которую читатель положил
// после изменения настроек, но прочитал до него, считается промахом.
type SettingsCache struct {
	rdb    RedisClient
	prefix string
	ttl    time.Duration
}

// NewSettingsCache создает кеш настроек
func NewSettingsCache(rdb RedisClient, prefix string, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SettingsCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Get возвращает настройки из кеша или ErrCacheMiss
func (c *SettingsCache) Get(ctx context.Context) (*domain.ReservationSettings, error) {
	generation, err := c.Generation(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.rdb.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrCache, err)
	}

	var dto settingsDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		// битая запись ведет себя как промах
		return nil, fmt.Errorf("%w: decode: %v", ErrCacheMiss, err)
	}
	if dto.Generation != generation {
		return nil, fmt.Errorf("%w: stale generation %d, current %d", ErrCacheMiss, dto.Generation, generation)
	}

	return dto.toDomain(), nil
}

// Generation текущее поколение настроек (0, если ключа нет).
// Читается до загрузки настроек из БД и передается в Set.
func (c *SettingsCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get generation: %v", ErrCache, err)
	}
	return generation, nil
}

// Set кладет настройки, прочитанные в поколении generation
func (c *SettingsCache) Set(ctx context.Context, s *domain.ReservationSettings, generation int64) error {
	dto := fromDomain(s)
	dto.Generation = generation
	raw, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrCache, err)
	}
	if err := c.rdb.Set(ctx, c.key(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate начинает новое поколение и удаляет настройки из кеша
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("%w: incr generation: %v", ErrCache, err)
	}
	if err := c.rdb.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrCache, err)
	}
	return nil
}

func (c *SettingsCache) key() string {
	return c.prefixed(settingsKey)
}

func (c *SettingsCache) generationKey() string {
	return c.prefixed(generationKey)
}

func (c *SettingsCache) prefixed(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

type settingsDTO struct {
	MaxTables            int                 `json:"max_tables"`
	MaxPartySize         int                 `json:"max_party_size"`
	SlotDurationMinutes  int                 `json:"slot_duration_minutes"`
	BookingWindowDays    int                 `json:"booking_window_days"`
	ReservationStartTime string              `json:"reservation_start_time"`
	ReservationEndTime   string              `json:"reservation_end_time"`
	ClosedDays           []string            `json:"closed_days"`
	AutoConfirm          bool                `json:"auto_confirm"`
	MinAdvanceHours      int                 `json:"min_advance_hours"`
	HoldMinutes          int                 `json:"hold_minutes"`
	BusinessHours        *domain.WeeklyHours `json:"business_hours,omitempty"`
	UpdatedAt            time.Time           `json:"updated_at"`
	Generation           int64               `json:"generation"`
}

func fromDomain(s *domain.ReservationSettings) settingsDTO {
	return settingsDTO{
		MaxTables:            s.MaxTables,
		MaxPartySize:         s.MaxPartySize,
		SlotDurationMinutes:  s.SlotDurationMinutes,
		BookingWindowDays:    s.BookingWindowDays,
		ReservationStartTime: s.ReservationStartTime.String(),
		ReservationEndTime:   s.ReservationEndTime.String(),
		ClosedDays:           s.ClosedDays,
		AutoConfirm:          s.AutoConfirm,
		MinAdvanceHours:      s.MinAdvanceHours,
		HoldMinutes:          s.HoldMinutes,
		BusinessHours:        s.BusinessHours,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (d settingsDTO) toDomain() *domain.ReservationSettings {
	closed := d.ClosedDays
	if closed == nil {
		closed = []string{}
	}
	return &domain.ReservationSettings{
		MaxTables:            d.MaxTables,
		MaxPartySize:         d.MaxPartySize,
		SlotDurationMinutes:  d.SlotDurationMinutes,
		BookingWindowDays:    d.BookingWindowDays,
		ReservationStartTime: types.TimeString(d.ReservationStartTime),
		ReservationEndTime:   types.TimeString(d.ReservationEndTime),
		ClosedDays:           closed,
		AutoConfirm:          d.AutoConfirm,
		MinAdvanceHours:      d.MinAdvanceHours,
		HoldMinutes:          d.HoldMinutes,
		BusinessHours:        d.BusinessHours,
		UpdatedAt:            d.UpdatedAt,
	}
}
