package availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ComputeRemaining возвращает количество свободных столов в слоте (date, t).
// Одна активная (pending/confirmed) бронь занимает один стол независимо от размера компании.
// Результат всегда в диапазоне [0, max_tables].
func ComputeRemaining(
	date time.Time,
	t types.TimeString,
	settings *domain.ReservationSettings,
	reservations []*domain.Reservation,
) int {
	remaining := settings.MaxTables - countActive(date, t, reservations)
	if remaining < 0 {
		return 0
	}
	if remaining > settings.MaxTables {
		return settings.MaxTables
	}
	return remaining
}

func countActive(date time.Time, t types.TimeString, reservations []*domain.Reservation) int {
	count := 0
	for _, r := range reservations {
		if r == nil || !r.IsActive() {
			continue
		}
		if !sameDay(r.Date, date) || !r.Time.Equal(t) {
			continue
		}
		count++
	}
	return count
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
