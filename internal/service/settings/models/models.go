package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// SettingsResponse политика бронирования
type SettingsResponse struct {
	MaxTables            int                 `json:"maxTables"`
	MaxPartySize         int                 `json:"maxPartySize"`
	SlotDurationMinutes  int                 `json:"slotDurationMinutes"`
	BookingWindowDays    int                 `json:"bookingWindowDays"`
	ReservationStartTime string              `json:"reservationStartTime"`
	ReservationEndTime   string              `json:"reservationEndTime"`
	ClosedDays           []string            `json:"closedDays"`
	AutoConfirm          bool                `json:"autoConfirm"`
	MinAdvanceHours      int                 `json:"minAdvanceHours"`
	HoldMinutes          int                 `json:"holdMinutes"`
	BusinessHours        *domain.WeeklyHours `json:"businessHours,omitempty"`
	UpdatedAt            *time.Time          `json:"updatedAt,omitempty"`
}

// UpdateSettingsRequest запрос на изменение настроек
// Все поля опциональны - обновляются только переданные значения
type UpdateSettingsRequest struct {
	MaxTables            *int                `json:"maxTables,omitempty"`
	MaxPartySize         *int                `json:"maxPartySize,omitempty"`
	SlotDurationMinutes  *int                `json:"slotDurationMinutes,omitempty"`
	BookingWindowDays    *int                `json:"bookingWindowDays,omitempty"`
	ReservationStartTime *string             `json:"reservationStartTime,omitempty"`
	ReservationEndTime   *string             `json:"reservationEndTime,omitempty"`
	ClosedDays           []string            `json:"closedDays,omitempty"`
	AutoConfirm          *bool               `json:"autoConfirm,omitempty"`
	MinAdvanceHours      *int                `json:"minAdvanceHours,omitempty"`
	HoldMinutes          *int                `json:"holdMinutes,omitempty"`
	BusinessHours        *domain.WeeklyHours `json:"businessHours,omitempty"`
	ClearBusinessHours   bool                `json:"clearBusinessHours,omitempty"`
}

// FromDomain конвертирует domain модель в DTO
func FromDomain(s *domain.ReservationSettings) *SettingsResponse {
	if s == nil {
		return nil
	}

	closed := s.ClosedDays
	if closed == nil {
		closed = []string{}
	}

	resp := &SettingsResponse{
		MaxTables:            s.MaxTables,
		MaxPartySize:         s.MaxPartySize,
		SlotDurationMinutes:  s.SlotDurationMinutes,
		BookingWindowDays:    s.BookingWindowDays,
		ReservationStartTime: s.ReservationStartTime.String(),
		ReservationEndTime:   s.ReservationEndTime.String(),
		ClosedDays:           closed,
		AutoConfirm:          s.AutoConfirm,
		MinAdvanceHours:      s.MinAdvanceHours,
		HoldMinutes:          s.HoldMinutes,
		BusinessHours:        s.BusinessHours,
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// ApplyTo применяет обновления к копии настроек
// Время принимается в формате HH:MM или HH:MM:SS
func (r *UpdateSettingsRequest) ApplyTo(s *domain.ReservationSettings) error {
	if r.MaxTables != nil {
		s.MaxTables = *r.MaxTables
	}
	if r.MaxPartySize != nil {
		s.MaxPartySize = *r.MaxPartySize
	}
	if r.SlotDurationMinutes != nil {
		s.SlotDurationMinutes = *r.SlotDurationMinutes
	}
	if r.BookingWindowDays != nil {
		s.BookingWindowDays = *r.BookingWindowDays
	}
	if r.ReservationStartTime != nil {
		t, err := types.NewTimeStringFromString(*r.ReservationStartTime)
		if err != nil {
			return err
		}
		s.ReservationStartTime = t
	}
	if r.ReservationEndTime != nil {
		t, err := types.NewTimeStringFromString(*r.ReservationEndTime)
		if err != nil {
			return err
		}
		s.ReservationEndTime = t
	}
	if r.ClosedDays != nil {
		s.ClosedDays = normalizeDays(r.ClosedDays)
	}
	if r.AutoConfirm != nil {
		s.AutoConfirm = *r.AutoConfirm
	}
	if r.MinAdvanceHours != nil {
		s.MinAdvanceHours = *r.MinAdvanceHours
	}
	if r.HoldMinutes != nil {
		s.HoldMinutes = *r.HoldMinutes
	}
	if r.BusinessHours != nil {
		hours := *r.BusinessHours
		s.BusinessHours = &hours
	}
	if r.ClearBusinessHours {
		s.BusinessHours = nil
	}
	return nil
}

func normalizeDays(days []string) []string {
	result := make([]string, 0, len(days))
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		wd, ok := domain.ParseWeekday(d)
		name := d
		if ok {
			name = domain.WeekdayName(wd)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
