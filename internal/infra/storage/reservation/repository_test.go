package reservation

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/migrate"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func TestEnsureCounterQuery(t *testing.T) {
	query, args, err := ensureCounterQuery("2026-10-20", "19:00").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO reservation_slot_counters (reservation_date,reservation_time,reserved) VALUES ($1,$2,$3) "+
			"ON CONFLICT (reservation_date, reservation_time) DO NOTHING",
		query)
	assert.Equal(t, []interface{}{"2026-10-20", types.TimeString("19:00"), 0}, args)
}

func TestReserveTableQuery_GuardsCapacity(t *testing.T) {
	query, args, err := reserveTableQuery("2026-10-20", "19:00", 4).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE reservation_slot_counters SET reserved = reserved + 1 "+
			"WHERE reservation_date = $1 AND reservation_time = $2 AND reserved < $3 RETURNING reserved",
		query)
	assert.Equal(t, []interface{}{"2026-10-20", types.TimeString("19:00"), 4}, args)
}

func TestReserveTableError(t *testing.T) {
	assert.ErrorIs(t, reserveTableError(sql.ErrNoRows), ErrSlotFull)
	assert.ErrorIs(t, reserveTableError(context.DeadlineExceeded), ErrUnavailable)
	assert.ErrorIs(t, reserveTableError(errors.New("boom")), ErrExecQuery)
}

func TestReleaseTableQuery_NeverBelowZero(t *testing.T) {
	query, args, err := releaseTableQuery("2026-10-20", "19:00").ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "SET reserved = GREATEST(reserved - 1, 0)")
	assert.Equal(t, []interface{}{"2026-10-20", types.TimeString("19:00")}, args)
}

func TestInsertReservationQuery(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	res := &domain.Reservation{
		ID:           uuid.New(),
		CustomerName: "Ann",
		Date:         time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Time:         "19:00",
		PartySize:    2,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query, args, err := insertReservationQuery(res).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO reservations (")
	require.Len(t, args, len(columns))
	assert.Equal(t, res.ID, args[0])
	assert.Equal(t, "2026-10-20", args[4])
	assert.Equal(t, types.TimeString("19:00"), args[5])
	assert.Equal(t, domain.StatusPending, args[7])
}

func TestListByDateQuery(t *testing.T) {
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		forUpdate bool
	}{
		{"outside transaction", false},
		{"inside transaction", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listByDateQuery(date, tt.forUpdate).ToSql()
			require.NoError(t, err)

			assert.Contains(t, query, "WHERE reservation_date = $1 AND status IN ($2,$3)")
			assert.Contains(t, query, "ORDER BY reservation_time ASC, created_at ASC")
			assert.Equal(t, []interface{}{"2026-10-20", "pending", "confirmed"}, args)
			if tt.forUpdate {
				assert.Regexp(t, `FOR UPDATE$`, query)
			} else {
				assert.NotContains(t, query, "FOR UPDATE")
			}
		})
	}
}

func TestCancelExpiredQuery(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	query, args, err := cancelExpiredQuery(now).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE status = $3 AND expires_at <= $4")
	assert.Contains(t, query, "RETURNING id, customer_name")
	assert.Equal(t, []interface{}{domain.StatusCancelled, now, domain.StatusPending, now}, args)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}

// TestRepository_CreateStopsAtCapacity гоняется только против живой БД:
// RESERVATIONS_TEST_DSN=postgres://... go test ./internal/infra/storage/reservation/
func TestRepository_CreateStopsAtCapacity(t *testing.T) {
	dsn := os.Getenv("RESERVATIONS_TEST_DSN")
	if dsn == "" {
		t.Skip("RESERVATIONS_TEST_DSN is not set")
	}

	ctx := context.Background()
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	tx := txmanager.NewTransactionManager(db)
	_, err = migrate.Up(ctx, db, tx, nopLogger{})
	require.NoError(t, err)

	date := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	cleanup := func() {
		_, _ = sqlDB.ExecContext(ctx, "DELETE FROM reservations WHERE reservation_date = $1", "2099-01-01")
		_, _ = sqlDB.ExecContext(ctx, "DELETE FROM reservation_slot_counters WHERE reservation_date = $1", "2099-01-01")
	}
	cleanup()
	t.Cleanup(cleanup)

	repo := NewRepository(db)
	create := func() error {
		return tx.Do(ctx, func(ctx context.Context) error {
			now := time.Now().UTC()
			_, err := repo.Create(ctx, &domain.Reservation{
				ID:            uuid.New(),
				CustomerName:  "Ann",
				CustomerEmail: "ann@example.com",
				CustomerPhone: "+10000000000",
				Date:          date,
				Time:          "19:00",
				PartySize:     2,
				Status:        domain.StatusConfirmed,
				CreatedAt:     now,
				UpdatedAt:     now,
			}, 2)
			return err
		})
	}

	require.NoError(t, create())
	require.NoError(t, create())
	assert.ErrorIs(t, create(), ErrSlotFull)

	// Отказ откатил транзакцию: строк ровно max_tables
	active, err := repo.ListByDate(ctx, date)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	require.NoError(t, repo.ReleaseSlot(ctx, date, "19:00"))
	assert.NoError(t, create())
}
