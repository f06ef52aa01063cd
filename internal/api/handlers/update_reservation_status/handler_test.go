package update_reservation_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type staticSettings struct{}

func (staticSettings) Current(context.Context) (*domain.ReservationSettings, error) {
	return domain.DefaultSettings(), nil
}

type noopPublisher struct{}

func (noopPublisher) PublishStatusChanged(context.Context, *domain.Reservation, domain.ReservationStatus) error {
	return nil
}

func newRouter(store *memory.ReservationStore) *mux.Router {
	svc := reservations.NewService(store, staticSettings{}, noopPublisher{}, &memory.TxManager{}, logger.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/reservations/{reservationId}/status", NewHandler(svc, logger.Nop()).Handle).
		Methods(http.MethodPatch)
	return r
}

func TestHandle(t *testing.T) {
	store := memory.NewReservationStore()
	confirmed := &domain.Reservation{
		ID:        uuid.New(),
		Date:      time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Time:      "19:00",
		PartySize: 2,
		Status:    domain.StatusConfirmed,
	}
	store.Seed(confirmed)
	router := newRouter(store)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"invalid id", "42", `{"status":"cancelled"}`, http.StatusBadRequest},
		{"invalid body", confirmed.ID.String(), `{"status":`, http.StatusBadRequest},
		{"unknown status", confirmed.ID.String(), `{"status":"seated"}`, http.StatusBadRequest},
		{"not found", uuid.NewString(), `{"status":"cancelled"}`, http.StatusNotFound},
		{"back to pending", confirmed.ID.String(), `{"status":"pending"}`, http.StatusConflict},
		{"complete", confirmed.ID.String(), `{"status":"completed"}`, http.StatusOK},
		{"terminal", confirmed.ID.String(), `{"status":"cancelled"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/reservations/"+tt.id+"/status", strings.NewReader(tt.body))
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, 0, store.Reserved(confirmed.Date, confirmed.Time))
}
