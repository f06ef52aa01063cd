package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Date            time.Time        // Дата (календарный день, время игнорируется)
	Time            types.TimeString // Начало слота, например "19:00"
	PartySize       int
	SpecialRequests *string
}

// Response созданное бронирование
type Response struct {
	ID              string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Date            time.Time
	Time            types.TimeString
	PartySize       int
	Status          string
	SpecialRequests *string
	ExpiresAt       *time.Time // только для pending
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
