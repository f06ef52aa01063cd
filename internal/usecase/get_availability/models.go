package get_availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date      time.Time // Дата (календарный день)
	PartySize int
}

// Response модель ответа со слотами
type Response struct {
	Date      time.Time
	PartySize int
	Slots     []domain.TimeSlot // Все слоты дня по порядку, занятые помечены Available=false
}
