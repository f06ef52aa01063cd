package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/pgerr"
)

var (
	// ErrSerializationFailure транзакция конфликтовала с параллельной и была откатена.
	// Вызывающая сторона может повторить операцию.
	ErrSerializationFailure = errors.New("txmanager: serialization failure")

	// ErrUnavailable БД недоступна
	ErrUnavailable = errors.New("txmanager: database unavailable")

	// ErrTransaction прочие ошибки begin/commit
	ErrTransaction = errors.New("txmanager: transaction error")
)

// TxBeginner умеет открывать транзакции (реализуется *dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функцию внутри транзакции.
// Транзакция передаётся через контекст, репозитории достают её через dbmetrics.GetExecutor.
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// Конфликт сериализации возвращается как ErrSerializationFailure.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return classify(fmt.Errorf("%w: begin: %v", ErrTransaction, err), err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return classify(err, err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("%w: commit: %v", ErrTransaction, err), err)
	}

	return nil
}

// classify добавляет к wrapped маркер ErrSerializationFailure / ErrUnavailable,
// если cause относится к одной из этих категорий
func classify(wrapped error, cause error) error {
	switch {
	case errors.Is(wrapped, ErrSerializationFailure), errors.Is(wrapped, ErrUnavailable):
		return wrapped
	case pgerr.IsSerializationFailure(cause):
		return fmt.Errorf("%w: %w", ErrSerializationFailure, wrapped)
	case pgerr.IsUnavailable(cause):
		return fmt.Errorf("%w: %w", ErrUnavailable, wrapped)
	default:
		return wrapped
	}
}
