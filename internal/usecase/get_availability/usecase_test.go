package get_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type stubSettings struct {
	s   *domain.ReservationSettings
	err error
}

func (p stubSettings) Current(context.Context) (*domain.ReservationSettings, error) {
	return p.s, p.err
}

func newUseCase(store *memory.ReservationStore, settings SettingsProvider, loc *time.Location, now time.Time) *UseCase {
	uc := NewUseCase(store, settings, &memory.TxManager{}, loc, logger.Nop())
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecute_ReadsInsideReadOnlyTransaction(t *testing.T) {
	store := memory.NewReservationStore()
	tx := &memory.TxManager{}
	uc := NewUseCase(store, stubSettings{s: domain.DefaultSettings()}, tx, time.UTC, logger.Nop())
	uc.timeProvider = fixedTime{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	_, err := uc.Execute(context.Background(), &Request{Date: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), PartySize: 2})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.ReadOnlyCalls)
	assert.Equal(t, 0, tx.Calls)
}

func TestExecute_ReturnsAllSlots(t *testing.T) {
	store := memory.NewReservationStore()
	date := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	for i := 0; i < domain.DefaultMaxTables; i++ {
		store.Seed(&domain.Reservation{ID: uuid.New(), Date: date, Time: "18:00", Status: domain.StatusConfirmed})
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc := newUseCase(store, stubSettings{s: domain.DefaultSettings()}, time.UTC, now)

	resp, err := uc.Execute(context.Background(), &Request{Date: date, PartySize: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.PartySize)
	require.Len(t, resp.Slots, 10)
	assert.Equal(t, types.TimeString("17:00"), resp.Slots[0].Time)
	assert.Equal(t, types.TimeString("21:30"), resp.Slots[9].Time)
	for _, slot := range resp.Slots {
		if slot.Time == "18:00" {
			assert.False(t, slot.Available)
			assert.Equal(t, 0, slot.RemainingCapacity)
			continue
		}
		assert.True(t, slot.Available, slot.Time)
		assert.Equal(t, domain.DefaultMaxTables, slot.RemainingCapacity)
	}
}

func TestExecute_DateAnchoredInRestaurantZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 23:00 UTC 12 марта это уже 13 марта по времени ресторана, но дата запроса берется как есть
	now := time.Date(2026, 3, 12, 23, 0, 0, 0, time.UTC)
	uc := newUseCase(memory.NewReservationStore(), stubSettings{s: domain.DefaultSettings()}, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{Date: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), PartySize: 2})

	require.NoError(t, err)
	assert.Equal(t, loc, resp.Date.Location())
	assert.Equal(t, 13, resp.Date.Day())
	assert.NotEmpty(t, resp.Slots)
}

func TestExecute_PolicyErrorsPassThrough(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc := newUseCase(memory.NewReservationStore(), stubSettings{s: domain.DefaultSettings()}, time.UTC, now)

	_, err := uc.Execute(context.Background(), &Request{Date: now.AddDate(0, 0, 60), PartySize: 2})
	assert.ErrorIs(t, err, availability.ErrOutOfWindow)

	_, err = uc.Execute(context.Background(), &Request{Date: now, PartySize: 0})
	assert.ErrorIs(t, err, availability.ErrInvalidRequest)
}

func TestExecute_Unavailable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store := memory.NewReservationStore()
	store.Err = reservation.ErrUnavailable
	uc := newUseCase(store, stubSettings{s: domain.DefaultSettings()}, time.UTC, now)
	_, err := uc.Execute(context.Background(), &Request{Date: now, PartySize: 2})
	assert.ErrorIs(t, err, availability.ErrUnavailable)

	uc = newUseCase(memory.NewReservationStore(), stubSettings{err: settingsService.ErrUnavailable}, time.UTC, now)
	_, err = uc.Execute(context.Background(), &Request{Date: now, PartySize: 2})
	assert.ErrorIs(t, err, availability.ErrUnavailable)

	uc = newUseCase(memory.NewReservationStore(), stubSettings{err: errors.New("boom")}, time.UTC, now)
	_, err = uc.Execute(context.Background(), &Request{Date: now, PartySize: 2})
	assert.ErrorIs(t, err, ErrInternal)
}
