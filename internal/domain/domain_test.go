package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func TestReservation_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from ReservationStatus
		to   ReservationStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			r := &Reservation{Status: tt.from}
			assert.Equal(t, tt.want, r.CanTransitionTo(tt.to))
		})
	}
}

func TestReservation_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Reservation{Status: StatusPending, ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&Reservation{Status: StatusPending, ExpiresAt: &now}).IsExpired(now))
	assert.False(t, (&Reservation{Status: StatusPending, ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&Reservation{Status: StatusConfirmed, ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&Reservation{Status: StatusPending}).IsExpired(now))
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ReservationSettings)
		wantErr bool
	}{
		{"defaults", func(s *ReservationSettings) {}, false},
		{"zero tables", func(s *ReservationSettings) { s.MaxTables = 0 }, true},
		{"zero party size", func(s *ReservationSettings) { s.MaxPartySize = 0 }, true},
		{"zero slot duration", func(s *ReservationSettings) { s.SlotDurationMinutes = 0 }, true},
		{"negative window", func(s *ReservationSettings) { s.BookingWindowDays = -1 }, true},
		{"start after end", func(s *ReservationSettings) {
			s.ReservationStartTime = "22:00"
			s.ReservationEndTime = "17:00"
		}, true},
		{"bad closed day", func(s *ReservationSettings) { s.ClosedDays = []string{"funday"} }, true},
		{"closed day mixed case", func(s *ReservationSettings) { s.ClosedDays = []string{"Monday"} }, false},
		{"business hours open after close", func(s *ReservationSettings) {
			s.BusinessHours = &WeeklyHours{}
			*s.BusinessHours = allDays(DaySchedule{Open: "23:00", Close: "10:00"})
		}, true},
		{"business hours ok", func(s *ReservationSettings) {
			h := allDays(DaySchedule{Open: "12:00", Close: "23:00"})
			h.Sunday = DaySchedule{Closed: true}
			s.BusinessHours = &h
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettings_WindowFor(t *testing.T) {
	s := DefaultSettings()
	h := allDays(DaySchedule{Open: "18:00", Close: "23:00"})
	h.Monday = DaySchedule{Closed: true}
	s.BusinessHours = &h

	tuesday := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end := s.WindowFor(tuesday)
	assert.Equal(t, types.TimeString("18:00"), start)
	assert.Equal(t, types.TimeString("22:00"), end)

	monday := tuesday.AddDate(0, 0, -1)
	assert.True(t, s.IsClosedOn(monday))
	assert.False(t, s.IsClosedOn(tuesday))
}

func TestSettings_IsClosedOn_ClosedDays(t *testing.T) {
	s := DefaultSettings()
	s.ClosedDays = []string{"sunday"}

	sunday := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())
	assert.True(t, s.IsClosedOn(sunday))
	assert.False(t, s.IsClosedOn(sunday.AddDate(0, 0, 1)))
}

func allDays(d DaySchedule) WeeklyHours {
	return WeeklyHours{Monday: d, Tuesday: d, Wednesday: d, Thursday: d, Friday: d, Saturday: d, Sunday: d}
}
