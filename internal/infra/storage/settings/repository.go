package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/pgerr"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const (
	tableSettings = "reservation_settings"
	settingsRowID = 1
)

// Repository репозиторий настроек бронирования (одна строка с id = 1)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get читает настройки. business_hours валидируются при загрузке.
func (r *Repository) Get(ctx context.Context) (*domain.ReservationSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"max_tables",
		"max_party_size",
		"slot_duration_minutes",
		"booking_window_days",
		"reservation_start_time",
		"reservation_end_time",
		"closed_days",
		"auto_confirm",
		"min_advance_hours",
		"hold_minutes",
		"business_hours",
		"updated_at",
	).
		From(tableSettings).
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ReservationSettings
	var closedDays pq.StringArray
	var businessHours []byte

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.MaxTables,
		&s.MaxPartySize,
		&s.SlotDurationMinutes,
		&s.BookingWindowDays,
		&s.ReservationStartTime,
		&s.ReservationEndTime,
		&closedDays,
		&s.AutoConfirm,
		&s.MinAdvanceHours,
		&s.HoldMinutes,
		&businessHours,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if pgerr.IsUnavailable(err) {
		return nil, fmt.Errorf("%w: Get: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %v", ErrScanRow, err)
	}

	s.ClosedDays = closedDaysFromDB(closedDays)
	if s.BusinessHours, err = decodeBusinessHours(businessHours); err != nil {
		return nil, err
	}

	return &s, nil
}

// Save создает или перезаписывает строку настроек
func (r *Repository) Save(ctx context.Context, s *domain.ReservationSettings) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := upsertQuery(s)
	if err != nil {
		return fmt.Errorf("%w: Save - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if pgerr.IsUnavailable(err) {
			return fmt.Errorf("%w: Save: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: Save - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// upsertQuery INSERT ... ON CONFLICT (id) DO UPDATE для единственной строки настроек
func upsertQuery(s *domain.ReservationSettings) (string, []interface{}, error) {
	businessHours, err := encodeBusinessHours(s.BusinessHours)
	if err != nil {
		return "", nil, err
	}

	return psqlbuilder.Insert(tableSettings).
		Columns(
			"id",
			"max_tables",
			"max_party_size",
			"slot_duration_minutes",
			"booking_window_days",
			"reservation_start_time",
			"reservation_end_time",
			"closed_days",
			"auto_confirm",
			"min_advance_hours",
			"hold_minutes",
			"business_hours",
			"updated_at",
		).
		Values(
			settingsRowID,
			s.MaxTables,
			s.MaxPartySize,
			s.SlotDurationMinutes,
			s.BookingWindowDays,
			s.ReservationStartTime,
			s.ReservationEndTime,
			pq.Array(s.ClosedDays),
			s.AutoConfirm,
			s.MinAdvanceHours,
			s.HoldMinutes,
			businessHours,
			s.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			max_tables = EXCLUDED.max_tables,
			max_party_size = EXCLUDED.max_party_size,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			booking_window_days = EXCLUDED.booking_window_days,
			reservation_start_time = EXCLUDED.reservation_start_time,
			reservation_end_time = EXCLUDED.reservation_end_time,
			closed_days = EXCLUDED.closed_days,
			auto_confirm = EXCLUDED.auto_confirm,
			min_advance_hours = EXCLUDED.min_advance_hours,
			hold_minutes = EXCLUDED.hold_minutes,
			business_hours = EXCLUDED.business_hours,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
}

// encodeBusinessHours JSON для колонки business_hours; nil пишется как NULL
func encodeBusinessHours(hours *domain.WeeklyHours) (interface{}, error) {
	if hours == nil {
		return nil, nil
	}
	raw, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("encode business hours: %w", err)
	}
	return string(raw), nil
}

// decodeBusinessHours разбирает и валидирует business_hours; пустое значение означает "не заданы"
func decodeBusinessHours(raw []byte) (*domain.WeeklyHours, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var hours domain.WeeklyHours
	if err := json.Unmarshal(raw, &hours); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidBusinessHours, err)
	}
	if err := hours.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBusinessHours, err)
	}
	return &hours, nil
}

func closedDaysFromDB(days pq.StringArray) []string {
	if days == nil {
		return []string{}
	}
	return []string(days)
}
