// internal/service/expiry/sweeper.go
package expiry

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SubscriptionExpirer is the slice of the subscription store the
// sweeper needs.
type SubscriptionExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically marks lapsed subscriptions as expired. Reads
// already exclude lapsed rows, so the sweep only keeps the stored
// status column honest for reporting and admin queries.
type Sweeper struct {
	subs     SubscriptionExpirer
	logger   *zap.Logger
	schedule string
	cron     *cron.Cron
}

func NewSweeper(subs SubscriptionExpirer, schedule string, logger *zap.Logger) *Sweeper {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Sweeper{
		subs:     subs,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the sweep job and launches the scheduler. One sweep
// runs immediately so a long-stopped service catches up on boot.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	s.logger.Info("subscription expiry sweeper started", zap.String("schedule", s.schedule))

	go s.Sweep(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep expires every subscription whose window has passed.
func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.subs.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("subscription expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("subscriptions expired", zap.Int64("count", n))
	}
}
