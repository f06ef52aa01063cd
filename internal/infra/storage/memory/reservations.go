// Package memory хранит бронирования в памяти процесса.
// Используется в тестах use case и хендлеров вместо PostgreSQL;
// семантика ошибок совпадает с пакетом reservation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type slotKey struct {
	date string
	time types.TimeString
}

// ReservationStore потокобезопасное хранилище бронирований со счетчиками слотов
type ReservationStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*domain.Reservation
	counters     map[slotKey]int

	// Err, если задана, возвращается из каждого метода
	Err error
}

// NewReservationStore создает пустое хранилище
func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		reservations: make(map[uuid.UUID]*domain.Reservation),
		counters:     make(map[slotKey]int),
	}
}

// Seed добавляет бронирования как есть, учитывая их в счетчиках
func (s *ReservationStore) Seed(list ...*domain.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range list {
		cp := *r
		s.reservations[r.ID] = &cp
		if r.IsActive() {
			s.counters[keyOf(r.Date, r.Time)]++
		}
	}
}

// Reserved текущее значение счетчика слота
func (s *ReservationStore) Reserved(date time.Time, t types.TimeString) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[keyOf(date, t)]
}

func (s *ReservationStore) Create(_ context.Context, r *domain.Reservation, maxTables int) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	key := keyOf(r.Date, r.Time)
	if s.counters[key] >= maxTables {
		return nil, reservation.ErrSlotFull
	}
	if _, ok := s.reservations[r.ID]; ok {
		return nil, reservation.ErrDuplicate
	}

	s.counters[key]++
	cp := *r
	s.reservations[r.ID] = &cp
	return r, nil
}

func (s *ReservationStore) ListByDate(_ context.Context, date time.Time) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	day := date.Format(domain.DateFormat)
	result := make([]*domain.Reservation, 0)
	for _, r := range s.reservations {
		if r.IsActive() && r.Date.Format(domain.DateFormat) == day {
			cp := *r
			result = append(result, &cp)
		}
	}
	sortReservations(result)
	return result, nil
}

func (s *ReservationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *ReservationStore) List(_ context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	result := make([]*domain.Reservation, 0)
	for _, r := range s.reservations {
		day := r.Date.Format(domain.DateFormat)
		if filter.From != nil && day < filter.From.Format(domain.DateFormat) {
			continue
		}
		if filter.To != nil && day > filter.To.Format(domain.DateFormat) {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	sortReservations(result)

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*domain.Reservation{}, nil
		}
		result = result[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *ReservationStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReservationStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	r, ok := s.reservations[id]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = now
	if status != domain.StatusPending {
		r.ExpiresAt = nil
	}
	return nil
}

func (s *ReservationStore) UpdateDetails(_ context.Context, id uuid.UUID, tableNumber *int, adminNotes *string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	r, ok := s.reservations[id]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	if tableNumber != nil {
		n := *tableNumber
		r.TableNumber = &n
	}
	if adminNotes != nil {
		notes := *adminNotes
		r.AdminNotes = &notes
	}
	r.UpdatedAt = now
	return nil
}

func (s *ReservationStore) ReleaseSlot(_ context.Context, date time.Time, t types.TimeString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.release(keyOf(date, t))
	return nil
}

func (s *ReservationStore) CancelExpired(_ context.Context, now time.Time) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	expired := make([]*domain.Reservation, 0)
	for _, r := range s.reservations {
		if !r.IsExpired(now) {
			continue
		}
		r.Status = domain.StatusCancelled
		r.UpdatedAt = now
		s.release(keyOf(r.Date, r.Time))
		cp := *r
		expired = append(expired, &cp)
	}
	sortReservations(expired)
	return expired, nil
}

func (s *ReservationStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

func (s *ReservationStore) release(key slotKey) {
	if s.counters[key] > 0 {
		s.counters[key]--
	}
}

func keyOf(date time.Time, t types.TimeString) slotKey {
	return slotKey{date: date.Format(domain.DateFormat), time: t}
}

func sortReservations(list []*domain.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		di, dj := list[i].Date.Format(domain.DateFormat), list[j].Date.Format(domain.DateFormat)
		if di != dj {
			return di < dj
		}
		if list[i].Time != list[j].Time {
			return list[i].Time.IsBefore(list[j].Time)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
