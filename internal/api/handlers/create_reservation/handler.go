package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/availability"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date, expected YYYY-MM-DD"
	msgValidationFailed   = "contact details are invalid"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /reservations - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var verrs createReservation.ValidationErrors
		if errors.Is(err, availability.ErrValidation) && errors.As(err, &verrs) {
			h.logger.Warn("POST /reservations - Validation failed: %v", verrs)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, handlers.CodeValidationError,
				msgValidationFailed, verrs)
			return
		}

		if handlers.RespondPolicyError(w, err) {
			h.logger.Warn("POST /reservations - Rejected: date=%s, time=%s, party=%d, error=%v",
				req.Date, req.Time, req.PartySize, err)
			return
		}

		h.logger.Error("POST /reservations - Failed to create reservation: date=%s, time=%s, error=%v",
			req.Date, req.Time, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /reservations - Reservation created: id=%s, date=%s, time=%s, status=%s",
		result.ID, req.Date, req.Time, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
