package get_availability

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/get_availability"
)

// SlotResponse слот в ответе API
type SlotResponse struct {
	Time              string `json:"time"`
	Available         bool   `json:"available"`
	RemainingCapacity int    `json:"remainingCapacity"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date      string         `json:"date"`
	PartySize int            `json:"partySize"`
	Slots     []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Time:              s.Time.String(),
			Available:         s.Available,
			RemainingCapacity: s.RemainingCapacity,
		})
	}
	return &AvailabilityResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		PartySize: resp.PartySize,
		Slots:     slots,
	}
}
