package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubJudgingService struct {
	JudgingService
	sweeps  atomic.Int32
	lastCtx atomic.Value
}

func (s *stubJudgingService) SettleExpired(ctx context.Context) (int, error) {
	s.lastCtx.Store(ctx)
	s.sweeps.Add(1)
	return 0, nil
}

func TestStartSettlementSweeper_RunsAndStops(t *testing.T) {
	ctx := context.Background()
	judging := &stubJudgingService{}

	stop := StartSettlementSweeper(ctx, judging, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return judging.sweeps.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond, "expected the startup sweep plus at least one tick")

	stop()
	time.Sleep(20 * time.Millisecond)
	after := judging.sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, judging.sweeps.Load(), "no sweeps after stop")
}

func TestStartSettlementSweeper_SweepsSeeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	judging := &stubJudgingService{}

	stop := StartSettlementSweeper(ctx, judging, 10*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		return judging.sweeps.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	// The sweep runs on the worker's context so a long-running settlement
	// pass observes shutdown.
	swept, ok := judging.lastCtx.Load().(context.Context)
	assert.True(t, ok)
	assert.NoError(t, swept.Err())

	cancel()
	assert.ErrorIs(t, swept.Err(), context.Canceled)
}

func TestStartSettlementSweeper_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	judging := &stubJudgingService{}

	stop := StartSettlementSweeper(ctx, judging, 10*time.Millisecond)
	defer stop()

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := judging.sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, judging.sweeps.Load())
}
