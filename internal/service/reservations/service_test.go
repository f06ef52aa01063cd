package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixedTime struct{}

func (fixedTime) Now() time.Time { return now }

type staticSettings struct{ s *domain.ReservationSettings }

func (p staticSettings) Current(context.Context) (*domain.ReservationSettings, error) {
	return p.s, nil
}

type statusEvent struct {
	id       uuid.UUID
	status   domain.ReservationStatus
	previous domain.ReservationStatus
}

type fakePublisher struct{ events []statusEvent }

func (p *fakePublisher) PublishStatusChanged(_ context.Context, r *domain.Reservation, previous domain.ReservationStatus) error {
	p.events = append(p.events, statusEvent{id: r.ID, status: r.Status, previous: previous})
	return nil
}

func newTestService(store *memory.ReservationStore, pub *fakePublisher) *Service {
	svc := NewService(store, staticSettings{s: domain.DefaultSettings()}, pub, &memory.TxManager{}, logger.Nop())
	svc.timeProvider = fixedTime{}
	return svc
}

func seedReservation(store *memory.ReservationStore, status domain.ReservationStatus, expiresAt *time.Time) *domain.Reservation {
	r := &domain.Reservation{
		ID:            uuid.New(),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+441234567890",
		Date:          time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Time:          "19:00",
		PartySize:     2,
		Status:        status,
		ExpiresAt:     expiresAt,
		CreatedAt:     now.Add(-time.Hour),
		UpdatedAt:     now.Add(-time.Hour),
	}
	store.Seed(r)
	return r
}

func TestUpdateStatus_ConfirmKeepsSlot(t *testing.T) {
	store := memory.NewReservationStore()
	pub := &fakePublisher{}
	hold := now.Add(10 * time.Minute)
	r := seedReservation(store, domain.StatusPending, &hold)
	svc := newTestService(store, pub)

	resp, err := svc.UpdateStatus(context.Background(), r.ID, &models.UpdateStatusRequest{Status: "confirmed"})

	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Nil(t, resp.ExpiresAt)
	assert.Equal(t, 1, store.Reserved(r.Date, r.Time))
	require.Len(t, pub.events, 1)
	assert.Equal(t, statusEvent{id: r.ID, status: domain.StatusConfirmed, previous: domain.StatusPending}, pub.events[0])
}

func TestUpdateStatus_CancelReleasesSlot(t *testing.T) {
	store := memory.NewReservationStore()
	r := seedReservation(store, domain.StatusConfirmed, nil)
	svc := newTestService(store, &fakePublisher{})

	_, err := svc.UpdateStatus(context.Background(), r.ID, &models.UpdateStatusRequest{Status: "cancelled"})

	require.NoError(t, err)
	assert.Equal(t, 0, store.Reserved(r.Date, r.Time))
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	tests := []struct {
		from    domain.ReservationStatus
		to      string
		wantErr error
	}{
		{domain.StatusConfirmed, "completed", nil},
		{domain.StatusPending, "completed", ErrInvalidTransition},
		{domain.StatusCancelled, "confirmed", ErrInvalidTransition},
		{domain.StatusCompleted, "cancelled", ErrInvalidTransition},
		{domain.StatusConfirmed, "seated", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+tt.to, func(t *testing.T) {
			store := memory.NewReservationStore()
			pub := &fakePublisher{}
			r := seedReservation(store, tt.from, nil)
			svc := newTestService(store, pub)

			_, err := svc.UpdateStatus(context.Background(), r.ID, &models.UpdateStatusRequest{Status: tt.to})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.events)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateStatus_ExpiredHoldCannotBeConfirmed(t *testing.T) {
	store := memory.NewReservationStore()
	expired := now.Add(-time.Minute)
	r := seedReservation(store, domain.StatusPending, &expired)
	svc := newTestService(store, &fakePublisher{})

	_, err := svc.UpdateStatus(context.Background(), r.ID, &models.UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newTestService(memory.NewReservationStore(), &fakePublisher{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), &models.UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUpdateStatus_StoreUnavailable(t *testing.T) {
	store := memory.NewReservationStore()
	store.Err = reservation.ErrUnavailable
	svc := newTestService(store, &fakePublisher{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), &models.UpdateStatusRequest{Status: "confirmed"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdateDetails(t *testing.T) {
	store := memory.NewReservationStore()
	r := seedReservation(store, domain.StatusConfirmed, nil)
	svc := newTestService(store, &fakePublisher{})

	resp, err := svc.UpdateDetails(context.Background(), r.ID, &models.UpdateDetailsRequest{
		TableNumber: ptr.Ptr(7),
		AdminNotes:  ptr.Ptr("window seat"),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.TableNumber)
	assert.Equal(t, 7, *resp.TableNumber)
	assert.Equal(t, "window seat", ptr.Value(resp.AdminNotes))
	assert.Equal(t, now, resp.UpdatedAt)
}

func TestUpdateDetails_Invalid(t *testing.T) {
	store := memory.NewReservationStore()
	r := seedReservation(store, domain.StatusConfirmed, nil)
	svc := newTestService(store, &fakePublisher{})

	tests := []struct {
		name string
		req  *models.UpdateDetailsRequest
	}{
		{"empty", &models.UpdateDetailsRequest{}},
		{"table zero", &models.UpdateDetailsRequest{TableNumber: ptr.Ptr(0)}},
		{"table above max", &models.UpdateDetailsRequest{TableNumber: ptr.Ptr(domain.DefaultMaxTables + 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateDetails(context.Background(), r.ID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestList_Filters(t *testing.T) {
	store := memory.NewReservationStore()
	seedReservation(store, domain.StatusConfirmed, nil)
	seedReservation(store, domain.StatusCancelled, nil)
	svc := newTestService(store, &fakePublisher{})

	resp, err := svc.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)

	_, err = svc.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("unknown")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	from := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(context.Background(), &models.ListRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
