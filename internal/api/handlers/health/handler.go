package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

const checkTimeout = 2 * time.Second

// Check проверка зависимости для /readyz
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool // ошибка не делает сервис неготовым, только отмечается в ответе
}

type Logger interface {
	Warn(format string, v ...interface{})
}

type Handler struct {
	checks []Check
	logger Logger
}

func NewHandler(logger Logger, checks ...Check) *Handler {
	return &Handler{
		checks: checks,
		logger: logger,
	}
}

// Live GET /healthz
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready GET /readyz
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.logger.Warn("GET /readyz - %s check failed: %v", c.Name, err)
			result[c.Name] = "down"
			if !c.Optional {
				status = http.StatusServiceUnavailable
			}
			continue
		}
		result[c.Name] = "ok"
	}

	handlers.RespondJSON(w, status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": result,
	})
}
