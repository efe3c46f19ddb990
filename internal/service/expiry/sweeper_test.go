// internal/service/expiry/sweeper_test.go
package expiry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingExpirer struct {
	calls   atomic.Int64
	expired int64
	err     error
}

func (c *countingExpirer) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	c.calls.Add(1)
	return c.expired, c.err
}

func TestSweepCallsExpireDue(t *testing.T) {
	exp := &countingExpirer{expired: 3}
	s := NewSweeper(exp, "@hourly", zap.NewNop())

	s.Sweep(context.Background())
	assert.Equal(t, int64(1), exp.calls.Load())
}

func TestSweepSwallowsErrors(t *testing.T) {
	exp := &countingExpirer{err: errors.New("db down")}
	s := NewSweeper(exp, "@hourly", zap.NewNop())

	// Must not panic; the next scheduled run retries.
	s.Sweep(context.Background())
	assert.Equal(t, int64(1), exp.calls.Load())
}

func TestStartRunsInitialSweep(t *testing.T) {
	exp := &countingExpirer{}
	s := NewSweeper(exp, "@hourly", zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return exp.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(&countingExpirer{}, "not a schedule", zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}
