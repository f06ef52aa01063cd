package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/usecase/expire_holds"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type countingUseCase struct {
	calls atomic.Int32
	err   error
}

func (u *countingUseCase) Execute(context.Context) (*expire_holds.Response, error) {
	u.calls.Add(1)
	if u.err != nil {
		return nil, u.err
	}
	return &expire_holds.Response{}, nil
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	uc := &countingUseCase{err: errors.New("db down")}
	s := New(uc, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return uc.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(&countingUseCase{}, 0, logger.Nop())
	assert.Equal(t, time.Minute, s.interval)
}
