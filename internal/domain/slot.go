package domain

import "github.com/m04kA/SMC-ReservationService/pkg/types"

// TimeSlot computed view of a slot, never stored
type TimeSlot struct {
	Time              types.TimeString
	Available         bool
	RemainingCapacity int
}

// IsFull returns true if the slot has no tables left
func (s *TimeSlot) IsFull() bool {
	return s.RemainingCapacity <= 0
}

// OccupancyRate returns the share of taken tables as a percentage (0-100)
func (s *TimeSlot) OccupancyRate(maxTables int) float64 {
	if maxTables == 0 {
		return 0
	}
	return float64(maxTables-s.RemainingCapacity) / float64(maxTables) * 100
}
