// Package sweeper периодически отменяет pending брони с истекшим hold.
package sweeper

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/usecase/expire_holds"
)

const defaultInterval = time.Minute

// ExpireHoldsUseCase один проход sweep
type ExpireHoldsUseCase interface {
	Execute(ctx context.Context) (*expire_holds.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper запускает expire_holds по тикеру
type Sweeper struct {
	useCase  ExpireHoldsUseCase
	interval time.Duration
	logger   Logger
}

// New создает sweeper; interval <= 0 заменяется на минуту
func New(useCase ExpireHoldsUseCase, interval time.Duration, logger Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		useCase:  useCase,
		interval: interval,
		logger:   logger,
	}
}

// Run блокируется до отмены ctx. Первый проход выполняется сразу.
func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.logger.Info("Sweeper: started, interval=%s", s.interval)
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// tick ошибки только логируются: следующий тик повторит проход
func (s *Sweeper) tick(ctx context.Context) {
	if _, err := s.useCase.Execute(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Sweeper: sweep failed: %v", err)
	}
}
