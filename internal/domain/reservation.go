package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// IsValid returns true for one of the known statuses
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ConsumesCapacity returns true if a reservation in this status occupies a table
func (s ReservationStatus) ConsumesCapacity() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true for cancelled and completed
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// allowedTransitions жизненный цикл бронирования
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Reservation represents a table reservation
type Reservation struct {
	ID uuid.UUID

	// Contact
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Date      time.Time // calendar date, midnight in the restaurant timezone
	Time      types.TimeString
	PartySize int
	Status    ReservationStatus

	TableNumber     *int
	SpecialRequests *string
	AdminNotes      *string

	// ExpiresAt is set for pending holds only
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation consumes capacity
func (r *Reservation) IsActive() bool {
	return r.Status.ConsumesCapacity()
}

// CanTransitionTo returns true if the lifecycle allows moving to next
func (r *Reservation) CanTransitionTo(next ReservationStatus) bool {
	for _, s := range allowedTransitions[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsExpired returns true if a pending hold has run out at now
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// ReservationsFilter фильтр для списка бронирований (админка)
type ReservationsFilter struct {
	From   *time.Time         // Начало периода включительно (опционально)
	To     *time.Time         // Конец периода включительно (опционально)
	Status *ReservationStatus // Фильтр по статусу (опционально)
	Limit  int                // 0 = DefaultListLimit
	Offset int
}
