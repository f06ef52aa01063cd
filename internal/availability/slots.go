package availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// GenerateSlots возвращает упорядоченные начала слотов на дату.
// Слот t входит в результат, если start <= t и t + slot_duration <= end,
// где [start, end] окно бронирования, суженное business_hours этого дня.
// Неполный последний слот отбрасывается. Для закрытого дня результат пустой.
func GenerateSlots(date time.Time, settings *domain.ReservationSettings) []types.TimeString {
	slots := make([]types.TimeString, 0)

	if settings == nil || settings.SlotDurationMinutes <= 0 || settings.IsClosedOn(date) {
		return slots
	}

	start, end := settings.WindowFor(date)
	startMin, err := start.Minutes()
	if err != nil {
		return slots
	}
	endMin, err := end.Minutes()
	if err != nil {
		return slots
	}

	for t := startMin; t+settings.SlotDurationMinutes <= endMin; t += settings.SlotDurationMinutes {
		slot, err := start.AddMinutes(t - startMin)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}

	return slots
}
