package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// GetAvailability отвечает на вопрос "какие слоты можно забронировать на date для partySize".
// Возвращает полную упорядоченную последовательность слотов, недоступные помечены available=false.
// Дата интерпретируется в часовом поясе date.Location(), now приводится к нему же.
func GetAvailability(
	date time.Time,
	partySize int,
	settings *domain.ReservationSettings,
	reservations []*domain.Reservation,
	now time.Time,
) ([]domain.TimeSlot, error) {
	loc := date.Location()
	day := domain.DateOnly(date, loc)
	now = now.In(loc)
	today := domain.DateOnly(now, loc)

	// 1. Размер компании
	if partySize < 1 || partySize > settings.MaxPartySize {
		return nil, violation(ErrInvalidRequest, "partySize", formatRange(1, settings.MaxPartySize),
			"party size must be between 1 and %d", settings.MaxPartySize)
	}

	// 2. Прошедшая дата
	if day.Before(today) {
		return nil, violation(ErrTooSoon, "date", today.Format(domain.DateFormat),
			"date must not be earlier than %s", today.Format(domain.DateFormat))
	}

	// 3. Окно бронирования
	lastDay := today.AddDate(0, 0, settings.BookingWindowDays)
	if day.After(lastDay) {
		return nil, violation(ErrOutOfWindow, "date", lastDay.Format(domain.DateFormat),
			"reservations can be made at most %d days ahead (until %s)",
			settings.BookingWindowDays, lastDay.Format(domain.DateFormat))
	}

	// 4. Слоты дня
	starts := GenerateSlots(day, settings)
	if len(starts) == 0 {
		return []domain.TimeSlot{}, nil
	}

	// 5. Минимальное время до начала: если даже последний слот раньше границы, день недоступен
	noticeBound := now.Add(time.Duration(settings.MinAdvanceHours) * time.Hour)
	lastStart, err := starts[len(starts)-1].OnDate(day)
	if err != nil {
		return nil, violation(ErrInvalidRequest, "time", "", "invalid slot time: %v", err)
	}
	if lastStart.Before(noticeBound) {
		return nil, violation(ErrTooSoon, "date", noticeBound.Format(time.RFC3339),
			"reservations require at least %d hours notice", settings.MinAdvanceHours)
	}

	// 6. Свободные столы по каждому слоту
	result := make([]domain.TimeSlot, 0, len(starts))
	for _, start := range starts {
		at, err := start.OnDate(day)
		if err != nil {
			continue
		}
		slot := domain.TimeSlot{
			Time:              start,
			RemainingCapacity: ComputeRemaining(day, start, settings, reservations),
		}
		slot.Available = !slot.IsFull() && !at.Before(noticeBound)
		result = append(result, slot)
	}

	return result, nil
}

// CheckSlot проверяет, что конкретный слот (date, t) можно забронировать прямо сейчас.
// Используется при записи брони поверх актуального списка броней на дату.
func CheckSlot(
	date time.Time,
	t types.TimeString,
	partySize int,
	settings *domain.ReservationSettings,
	reservations []*domain.Reservation,
	now time.Time,
) (domain.TimeSlot, error) {
	slots, err := GetAvailability(date, partySize, settings, reservations, now)
	if err != nil {
		return domain.TimeSlot{}, err
	}

	for _, slot := range slots {
		if !slot.Time.Equal(t) {
			continue
		}

		at, err := t.OnDate(domain.DateOnly(date, date.Location()))
		if err != nil {
			return domain.TimeSlot{}, violation(ErrInvalidRequest, "time", "", "invalid time: %v", err)
		}
		noticeBound := now.Add(time.Duration(settings.MinAdvanceHours) * time.Hour)
		if at.Before(noticeBound) {
			return slot, violation(ErrTooSoon, "time", noticeBound.In(date.Location()).Format(time.RFC3339),
				"reservations require at least %d hours notice", settings.MinAdvanceHours)
		}
		if slot.IsFull() {
			return slot, violation(ErrSlotFull, "time", string(t), "no tables left at %s", t)
		}
		return slot, nil
	}

	return domain.TimeSlot{}, violation(ErrInvalidRequest, "time", "", "%s is not a reservation slot on %s",
		t, date.Format(domain.DateFormat))
}

func formatRange(min, max int) string {
	return fmt.Sprintf("%d..%d", min, max)
}
