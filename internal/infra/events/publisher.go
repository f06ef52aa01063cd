package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Типы событий жизненного цикла брони (они же имена топиков без префикса)
const (
	TypeReservationCreated       = "reservation.created"
	TypeReservationStatusChanged = "reservation.status_changed"
	TypeReservationExpired       = "reservation.expired"
)

// ErrPublish не удалось отправить событие
var ErrPublish = errors.New("events: publish failed")

// MessageWriter подмножество *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReservationEvent полезная нагрузка события
type ReservationEvent struct {
	EventID        string    `json:"eventId"`
	EventType      string    `json:"eventType"`
	ReservationID  string    `json:"reservationId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	PartySize      int       `json:"partySize"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher публикует события бронирований в Kafka.
// Ключ сообщения - id брони, поэтому события одной брони попадают в одну партицию.
type Publisher struct {
	writer      MessageWriter
	topicPrefix string
	now         func() time.Time
}

// NewKafkaWriter создает writer с hash-балансировкой по ключу.
// Топик задается в каждом сообщении.
func NewKafkaWriter(brokers []string, writeTimeout time.Duration) *kafka.Writer {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisher создает издателя поверх writer
func NewPublisher(writer MessageWriter, topicPrefix string) *Publisher {
	return &Publisher{
		writer:      writer,
		topicPrefix: strings.TrimSpace(topicPrefix),
		now:         time.Now,
	}
}

func (p *Publisher) PublishCreated(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, TypeReservationCreated, r, "")
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, r *domain.Reservation, previous domain.ReservationStatus) error {
	return p.publish(ctx, TypeReservationStatusChanged, r, previous)
}

func (p *Publisher) PublishExpired(ctx context.Context, r *domain.Reservation) error {
	return p.publish(ctx, TypeReservationExpired, r, domain.StatusPending)
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, eventType string, r *domain.Reservation, previous domain.ReservationStatus) error {
	event := ReservationEvent{
		EventID:        uuid.NewString(),
		EventType:      eventType,
		ReservationID:  r.ID.String(),
		Status:         string(r.Status),
		PreviousStatus: string(previous),
		Date:           r.Date.Format(domain.DateFormat),
		Time:           r.Time.String(),
		PartySize:      r.PartySize,
		OccurredAt:     p.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPublish, eventType, err)
	}

	msg := kafka.Message{
		Topic: p.topic(eventType),
		Key:   []byte(event.ReservationID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s id=%s: %v", ErrPublish, eventType, event.ReservationID, err)
	}

	return nil
}

func (p *Publisher) topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
