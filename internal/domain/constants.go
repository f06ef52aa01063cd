package domain

import (
	"errors"
	"strings"
	"time"
)

// Default reservation policy
const (
	DefaultMaxTables            = 10
	DefaultMaxPartySize         = 8
	DefaultSlotDurationMinutes  = 30
	DefaultBookingWindowDays    = 30
	DefaultReservationStartTime = "17:00"
	DefaultReservationEndTime   = "22:00"
	DefaultMinAdvanceHours      = 2
	DefaultHoldMinutes          = 30
)

// Business validation constants
const (
	MinTables              = 1
	MaxTables              = 500
	MinPartySize           = 1
	MaxPartySize           = 100
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MaxBookingWindowDays   = 365 // 1 year
	MaxMinAdvanceHours     = 168 // 1 week
	MinHoldMinutes         = 1
	MaxHoldMinutes         = 1440
	MaxNotesLength         = 500

	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ErrInvalidSettings настройки не прошли валидацию
var ErrInvalidSettings = errors.New("domain: invalid reservation settings")

// ActiveStatuses статусы, занимающие стол
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
}

// Weekdays в порядке business_hours
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdayName returns the lower-case English name ("monday")
func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// ParseWeekday parses a weekday name, case-insensitive
func ParseWeekday(name string) (time.Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}
	return 0, false
}

// DateOnly truncates t to midnight in loc
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateIn returns midnight of t's calendar date in loc, without converting the instant
func DateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
