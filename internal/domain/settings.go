package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationSettings represents the reservation policy of the restaurant.
// Singleton record, mutated only by admin configuration.
type ReservationSettings struct {
	MaxTables            int
	MaxPartySize         int
	SlotDurationMinutes  int
	BookingWindowDays    int // 0 = today only
	ReservationStartTime types.TimeString
	ReservationEndTime   types.TimeString
	ClosedDays           []string // lower-case English weekday names
	AutoConfirm          bool
	MinAdvanceHours      int
	HoldMinutes          int

	// BusinessHours narrows the reservation window per weekday (nil = not configured)
	BusinessHours *WeeklyHours

	UpdatedAt time.Time
}

// DaySchedule opening hours of a single weekday
type DaySchedule struct {
	Open   types.TimeString `json:"open,omitempty"`
	Close  types.TimeString `json:"close,omitempty"`
	Closed bool             `json:"closed"`
}

// WeeklyHours fixed mapping of the seven weekdays to their schedules
type WeeklyHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForWeekday returns the schedule of the given weekday
func (w *WeeklyHours) ForWeekday(day time.Weekday) DaySchedule {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{Closed: true}
	}
}

// Validate checks every weekday: either closed or open < close
func (w *WeeklyHours) Validate() error {
	for _, day := range Weekdays {
		s := w.ForWeekday(day)
		if s.Closed {
			continue
		}
		if err := s.Open.Validate(); err != nil {
			return fmt.Errorf("%w: business_hours.%s.open: %v", ErrInvalidSettings, WeekdayName(day), err)
		}
		if err := s.Close.Validate(); err != nil {
			return fmt.Errorf("%w: business_hours.%s.close: %v", ErrInvalidSettings, WeekdayName(day), err)
		}
		if !s.Open.IsBefore(s.Close) {
			return fmt.Errorf("%w: business_hours.%s: open must be before close", ErrInvalidSettings, WeekdayName(day))
		}
	}
	return nil
}

// DefaultSettings returns the policy used when no settings row exists
func DefaultSettings() *ReservationSettings {
	return &ReservationSettings{
		MaxTables:            DefaultMaxTables,
		MaxPartySize:         DefaultMaxPartySize,
		SlotDurationMinutes:  DefaultSlotDurationMinutes,
		BookingWindowDays:    DefaultBookingWindowDays,
		ReservationStartTime: types.TimeString(DefaultReservationStartTime),
		ReservationEndTime:   types.TimeString(DefaultReservationEndTime),
		ClosedDays:           []string{},
		AutoConfirm:          false,
		MinAdvanceHours:      DefaultMinAdvanceHours,
		HoldMinutes:          DefaultHoldMinutes,
	}
}

// IsClosedOn returns true if the date's weekday is closed either by
// closed_days or by business_hours
func (s *ReservationSettings) IsClosedOn(date time.Time) bool {
	name := WeekdayName(date.Weekday())
	for _, d := range s.ClosedDays {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	if s.BusinessHours != nil && s.BusinessHours.ForWeekday(date.Weekday()).Closed {
		return true
	}
	return false
}

// WindowFor returns the effective reservation window of the date:
// [reservation_start_time, reservation_end_time] intersected with business hours
func (s *ReservationSettings) WindowFor(date time.Time) (start, end types.TimeString) {
	start, end = s.ReservationStartTime, s.ReservationEndTime
	if s.BusinessHours == nil {
		return start, end
	}

	day := s.BusinessHours.ForWeekday(date.Weekday())
	if day.Closed {
		return start, start
	}
	if day.Open.IsAfter(start) {
		start = day.Open
	}
	if day.Close.IsBefore(end) {
		end = day.Close
	}
	return start, end
}

// Validate checks ranges and cross-field constraints of the policy
func (s *ReservationSettings) Validate() error {
	if s.MaxTables < MinTables || s.MaxTables > MaxTables {
		return fmt.Errorf("%w: max_tables must be between %d and %d", ErrInvalidSettings, MinTables, MaxTables)
	}
	if s.MaxPartySize < MinPartySize || s.MaxPartySize > MaxPartySize {
		return fmt.Errorf("%w: max_party_size must be between %d and %d", ErrInvalidSettings, MinPartySize, MaxPartySize)
	}
	if s.SlotDurationMinutes < MinSlotDurationMinutes || s.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot_duration_minutes must be between %d and %d",
			ErrInvalidSettings, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if s.BookingWindowDays < 0 || s.BookingWindowDays > MaxBookingWindowDays {
		return fmt.Errorf("%w: booking_window_days must be between 0 and %d", ErrInvalidSettings, MaxBookingWindowDays)
	}
	if s.MinAdvanceHours < 0 || s.MinAdvanceHours > MaxMinAdvanceHours {
		return fmt.Errorf("%w: min_advance_hours must be between 0 and %d", ErrInvalidSettings, MaxMinAdvanceHours)
	}
	if s.HoldMinutes < MinHoldMinutes || s.HoldMinutes > MaxHoldMinutes {
		return fmt.Errorf("%w: hold_minutes must be between %d and %d", ErrInvalidSettings, MinHoldMinutes, MaxHoldMinutes)
	}
	if err := s.ReservationStartTime.Validate(); err != nil {
		return fmt.Errorf("%w: reservation_start_time: %v", ErrInvalidSettings, err)
	}
	if err := s.ReservationEndTime.Validate(); err != nil {
		return fmt.Errorf("%w: reservation_end_time: %v", ErrInvalidSettings, err)
	}
	if !s.ReservationStartTime.IsBefore(s.ReservationEndTime) {
		return fmt.Errorf("%w: reservation_start_time must be before reservation_end_time", ErrInvalidSettings)
	}
	for _, d := range s.ClosedDays {
		if _, ok := ParseWeekday(d); !ok {
			return fmt.Errorf("%w: unknown weekday %q in closed_days", ErrInvalidSettings, d)
		}
	}
	if s.BusinessHours != nil {
		if err := s.BusinessHours.Validate(); err != nil {
			return err
		}
	}
	return nil
}
