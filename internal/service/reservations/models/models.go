package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// ListRequest фильтр списка бронирований
type ListRequest struct {
	From   *time.Time
	To     *time.Time
	Status *string
	Limit  int
	Offset int
}

// UpdateStatusRequest запрос на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateDetailsRequest запрос на изменение номера стола и заметок администратора
type UpdateDetailsRequest struct {
	TableNumber *int    `json:"tableNumber,omitempty"`
	AdminNotes  *string `json:"adminNotes,omitempty"`
}

// Response модели

// ReservationResponse бронирование в API
type ReservationResponse struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	CustomerPhone   string     `json:"customerPhone"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	PartySize       int        `json:"partySize"`
	Status          string     `json:"status"`
	TableNumber     *int       `json:"tableNumber,omitempty"`
	SpecialRequests *string    `json:"specialRequests,omitempty"`
	AdminNotes      *string    `json:"adminNotes,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ReservationListResponse список бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:              r.ID.String(),
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Date:            r.Date.Format(domain.DateFormat),
		Time:            r.Time.String(),
		PartySize:       r.PartySize,
		Status:          string(r.Status),
		TableNumber:     r.TableNumber,
		SpecialRequests: r.SpecialRequests,
		AdminNotes:      r.AdminNotes,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(list []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
	}
	for _, r := range list {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}
	return resp
}

// ToDomainStatus конвертирует строку в статус
func ToDomainStatus(s string) (domain.ReservationStatus, error) {
	status := domain.ReservationStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		From:   r.From,
		To:     r.To,
		Limit:  r.Limit,
		Offset: r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}
