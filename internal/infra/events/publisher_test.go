package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisher_StatusChanged(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, "restaurant")
	p.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	r := &domain.Reservation{
		ID:        uuid.MustParse("7f1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"),
		Date:      time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Time:      "19:00",
		PartySize: 4,
		Status:    domain.StatusConfirmed,
	}

	require.NoError(t, p.PublishStatusChanged(context.Background(), r, domain.StatusPending))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "restaurant.reservation.status_changed", msg.Topic)
	assert.Equal(t, r.ID.String(), string(msg.Key))
	assert.Equal(t, TypeReservationStatusChanged, header(msg, "event_type"))
	assert.NotEmpty(t, header(msg, "event_id"))

	var event ReservationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, header(msg, "event_id"), event.EventID)
	assert.Equal(t, "confirmed", event.Status)
	assert.Equal(t, "pending", event.PreviousStatus)
	assert.Equal(t, "2026-03-13", event.Date)
	assert.Equal(t, "19:00", event.Time)
}

func TestPublisher_WriteError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("broker down")}, "")

	err := p.PublishCreated(context.Background(), &domain.Reservation{ID: uuid.New()})

	assert.ErrorIs(t, err, ErrPublish)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
