// Package migrate применяет встроенные SQL миграции по порядку имен файлов.
// Примененные версии хранятся в schema_migrations.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

//go:embed *.sql
var fs embed.FS

// TxRunner выполняет fn в транзакции (pkg/txmanager)
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Files возвращает имена миграций в порядке применения
func Files() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Up применяет недостающие миграции; каждый файл + запись версии в одной транзакции
func Up(ctx context.Context, db dbmetrics.DBExecutor, tx TxRunner, logger Logger) (int, error) {
	files, err := Files()
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
	); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, f := range files {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, f,
		).Scan(&exists); err != nil {
			return applied, fmt.Errorf("check %s: %w", f, err)
		}
		if exists {
			continue
		}

		body, err := fs.ReadFile(f)
		if err != nil {
			return applied, err
		}

		err = tx.Do(ctx, func(txCtx context.Context) error {
			executor := dbmetrics.GetExecutor(txCtx, db)
			if _, err := executor.ExecContext(txCtx, string(body)); err != nil {
				return err
			}
			_, err := executor.ExecContext(txCtx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}

		logger.Info("Migrate: applied %s", f)
		applied++
	}

	return applied, nil
}
