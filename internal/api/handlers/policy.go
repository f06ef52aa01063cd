package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
)

// ViolationDetails нарушенная граница политики
type ViolationDetails struct {
	Field string `json:"field,omitempty"`
	Bound string `json:"bound,omitempty"`
}

// RespondPolicyError отвечает на ошибку пакета availability.
// Возвращает false, если err к политике не относится.
func RespondPolicyError(w http.ResponseWriter, err error) bool {
	var status int
	var code string

	switch {
	case errors.Is(err, availability.ErrInvalidRequest):
		status, code = http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, availability.ErrTooSoon):
		status, code = http.StatusUnprocessableEntity, CodeTooSoon
	case errors.Is(err, availability.ErrOutOfWindow):
		status, code = http.StatusUnprocessableEntity, CodeOutOfWindow
	case errors.Is(err, availability.ErrSlotFull):
		status, code = http.StatusConflict, CodeSlotFull
	case errors.Is(err, availability.ErrUnavailable):
		RespondUnavailable(w)
		return true
	default:
		return false
	}

	if v, ok := availability.Violation(err); ok {
		var details *ViolationDetails
		if v.Field != "" || v.Bound != "" {
			details = &ViolationDetails{Field: v.Field, Bound: v.Bound}
		}
		if details != nil {
			RespondErrorWithDetails(w, status, code, v.Message, details)
			return true
		}
		RespondError(w, status, code, v.Message)
		return true
	}

	RespondError(w, status, code, err.Error())
	return true
}
