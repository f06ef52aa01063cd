package get_availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/get_availability"
)

const (
	msgInvalidDate      = "invalid date, expected YYYY-MM-DD"
	msgInvalidPartySize = "invalid partySize, expected a positive integer"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability?date=YYYY-MM-DD&partySize=N
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	partySize, err := strconv.Atoi(query.Get("partySize"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid partySize: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPartySize)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		Date:      date,
		PartySize: partySize,
	})
	if err != nil {
		if handlers.RespondPolicyError(w, err) {
			h.logger.Warn("GET /availability - Rejected: date=%s, party=%d, error=%v",
				date.Format(domain.DateFormat), partySize, err)
			return
		}
		h.logger.Error("GET /availability - Failed to get availability: date=%s, error=%v",
			date.Format(domain.DateFormat), err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /availability - date=%s, party=%d, slots=%d",
		date.Format(domain.DateFormat), partySize, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
