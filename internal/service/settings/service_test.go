package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/cache"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

type fakeRepo struct {
	settings *domain.ReservationSettings
	getErr   error
	saveErr  error
	gets     int
	saved    *domain.ReservationSettings
	onGet    func()
}

func (r *fakeRepo) Get(context.Context) (*domain.ReservationSettings, error) {
	r.gets++
	if r.onGet != nil {
		r.onGet()
	}
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	cp := *r.settings
	return &cp, nil
}

func (r *fakeRepo) Save(_ context.Context, s *domain.ReservationSettings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.saved = &cp
	r.settings = &cp
	return nil
}

// fakeCache повторяет поведение поколений SettingsCache
type fakeCache struct {
	settings    *domain.ReservationSettings
	stored      int64
	generation  int64
	err         error
	invalidated int
}

func (c *fakeCache) Get(context.Context) (*domain.ReservationSettings, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.settings == nil || c.stored != c.generation {
		return nil, cache.ErrCacheMiss
	}
	return c.settings, nil
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.generation, nil
}

func (c *fakeCache) Set(_ context.Context, s *domain.ReservationSettings, generation int64) error {
	if c.err != nil {
		return c.err
	}
	c.settings = s
	c.stored = generation
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidated++
	c.generation++
	c.settings = nil
	return nil
}

type fakeMetrics struct {
	results []string
}

func (m *fakeMetrics) ObserveSettingsCache(result string) {
	m.results = append(m.results, result)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func newTestService(repo *fakeRepo, c SettingsCache, m Metrics) *Service {
	svc := NewService(repo, c, m, logger.Nop())
	svc.timeProvider = fixedTime{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	return svc
}

func TestCurrent_FillsCacheOnMiss(t *testing.T) {
	stored := domain.DefaultSettings()
	stored.MaxTables = 25
	repo := &fakeRepo{settings: stored}
	c := &fakeCache{}
	m := &fakeMetrics{}
	svc := newTestService(repo, c, m)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, first.MaxTables)

	second, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, second.MaxTables)

	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, []string{cacheMiss, cacheHit}, m.results)
}

func TestCurrent_InvalidateDuringLoadDoesNotLeaveStaleCache(t *testing.T) {
	stored := domain.DefaultSettings()
	repo := &fakeRepo{settings: stored}
	c := &fakeCache{}
	svc := newTestService(repo, c, &fakeMetrics{})

	// изменение настроек завершается, пока читатель ждет ответ БД
	repo.onGet = func() {
		repo.onGet = nil
		_ = c.Invalidate(context.Background())
	}
	_, err := svc.Current(context.Background())
	require.NoError(t, err)

	repo.settings.MaxTables = 12
	got, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, got.MaxTables)
	assert.Equal(t, 2, repo.gets)
}

func TestCurrent_DefaultsWhenRowMissing(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil, &fakeMetrics{})

	got, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
}

func TestCurrent_CacheErrorFallsBackToStore(t *testing.T) {
	repo := &fakeRepo{settings: domain.DefaultSettings()}
	m := &fakeMetrics{}
	svc := newTestService(repo, &fakeCache{err: errors.New("redis down")}, m)

	_, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, []string{cacheError}, m.results)
}

func TestCurrent_StoreUnavailable(t *testing.T) {
	repo := &fakeRepo{getErr: settingsRepo.ErrUnavailable}
	svc := newTestService(repo, nil, nil)

	_, err := svc.Current(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdate_PartialValidatedAndInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{settings: domain.DefaultSettings()}
	c := &fakeCache{settings: domain.DefaultSettings()}
	svc := newTestService(repo, c, &fakeMetrics{})

	resp, err := svc.Update(context.Background(), &models.UpdateSettingsRequest{
		MaxTables:  ptr.Ptr(12),
		ClosedDays: []string{"Monday", "monday", "tuesday"},
	})

	require.NoError(t, err)
	assert.Equal(t, 12, resp.MaxTables)
	assert.Equal(t, []string{"monday", "tuesday"}, resp.ClosedDays)
	assert.Equal(t, domain.DefaultSlotDurationMinutes, resp.SlotDurationMinutes)
	assert.Equal(t, 1, c.invalidated)
	require.NotNil(t, repo.saved)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), repo.saved.UpdatedAt)

	got, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, got.MaxTables)
}

func TestUpdate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *models.UpdateSettingsRequest
	}{
		{"zero tables", &models.UpdateSettingsRequest{MaxTables: ptr.Ptr(0)}},
		{"start after end", &models.UpdateSettingsRequest{
			ReservationStartTime: ptr.Ptr("23:00"),
			ReservationEndTime:   ptr.Ptr("18:00"),
		}},
		{"bad time format", &models.UpdateSettingsRequest{ReservationStartTime: ptr.Ptr("7pm")}},
		{"unknown weekday", &models.UpdateSettingsRequest{ClosedDays: []string{"someday"}}},
		{"bad business hours", &models.UpdateSettingsRequest{BusinessHours: &domain.WeeklyHours{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{settings: domain.DefaultSettings()}
			c := &fakeCache{}
			svc := newTestService(repo, c, nil)

			_, err := svc.Update(context.Background(), tt.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, repo.saved)
			assert.Equal(t, 0, c.invalidated)
		})
	}
}
