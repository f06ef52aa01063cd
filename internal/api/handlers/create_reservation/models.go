package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerPhone   string  `json:"customerPhone"`
	Date            string  `json:"date"` // "2026-03-13"
	Time            string  `json:"time"` // "19:00"
	PartySize       int     `json:"partySize"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID              string  `json:"id"`
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerPhone   string  `json:"customerPhone"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	PartySize       int     `json:"partySize"`
	Status          string  `json:"status"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
	ExpiresAt       *string `json:"expiresAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest() (*createReservation.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Date:            date,
		Time:            types.TimeString(r.Time),
		PartySize:       r.PartySize,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	result := &ReservationResponse{
		ID:              resp.ID,
		CustomerName:    resp.CustomerName,
		CustomerEmail:   resp.CustomerEmail,
		CustomerPhone:   resp.CustomerPhone,
		Date:            resp.Date.Format(domain.DateFormat),
		Time:            resp.Time.String(),
		PartySize:       resp.PartySize,
		Status:          resp.Status,
		SpecialRequests: resp.SpecialRequests,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
	if resp.ExpiresAt != nil {
		expiresAt := resp.ExpiresAt.Format(time.RFC3339)
		result.ExpiresAt = &expiresAt
	}
	return result
}
