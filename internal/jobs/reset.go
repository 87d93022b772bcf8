// Package jobs runs the recurring maintenance jobs of the backend
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// DefaultResetSchedule runs the daily reset at local midnight
const DefaultResetSchedule = "0 0 * * *"

// DefaultRetryInterval is how often a failed reset is retried
const DefaultRetryInterval = 5 * time.Minute

// DoseResetter clears taken flags recorded before cutoff
type DoseResetter interface {
	ResetTakenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WaterResetter zeroes water intake counted before cutoff's day
type WaterResetter interface {
	ResetWaterIntakeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds runner configuration
type Config struct {
	ResetSchedule string        // standard 5-field cron expression
	Timeout       time.Duration // max duration of one run
	RetryInterval time.Duration // delay between retries of a failed run
}

// Runner schedules the daily reset of taken flags and water intake. The reset clears
// everything recorded before today's local midnight, so it is caught up at start and
// retried after a failure without touching today's progress.
type Runner struct {
	config   Config
	medicine DoseResetter
	water    WaterResetter
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	failed  atomic.Bool
}

// NewRunner creates a new Runner
func NewRunner(config Config, medicine DoseResetter, water WaterResetter, logger *zap.Logger) *Runner {
	if config.ResetSchedule == "" {
		config.ResetSchedule = DefaultResetSchedule
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRetryInterval
	}

	return &Runner{
		config:   config,
		medicine: medicine,
		water:    water,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Start catches up a missed reset, then registers the daily and retry jobs and starts the cron scheduler
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("job runner already running")
	}

	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(r.config.ResetSchedule, r.runScheduled); err != nil {
		return fmt.Errorf("invalid reset schedule %q: %w", r.config.ResetSchedule, err)
	}
	c.Schedule(cron.Every(r.config.RetryInterval), cron.FuncJob(r.retryFailed))

	r.runScheduled()

	c.Start()
	r.cron = c
	r.running = true

	r.logger.Info("job runner started",
		zap.String("reset_schedule", r.config.ResetSchedule),
		zap.Duration("retry_interval", r.config.RetryInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	c := r.cron
	r.mu.Unlock()

	<-c.Stop().Done()
	r.logger.Info("job runner stopped")
}

// IsRunning returns whether the scheduler is active
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Pending reports whether the last reset failed and is waiting for a retry
func (r *Runner) Pending() bool {
	return r.failed.Load()
}

func (r *Runner) retryFailed() {
	if !r.failed.Load() {
		return
	}
	r.logger.Info("retrying failed daily reset")
	r.runScheduled()
}

func (r *Runner) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	if err := r.RunOnce(ctx); err != nil {
		r.failed.Store(true)
		r.logger.Error("daily reset failed", zap.Error(err))
		return
	}
	r.failed.Store(false)
}

// RunOnce clears taken flags and water counters recorded before today's local midnight.
// Both resets are attempted even if the first fails.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()
	cutoff := model.DateOf(r.now())

	doses, doseErr := r.medicine.ResetTakenBefore(ctx, cutoff)
	if doseErr != nil {
		doseErr = fmt.Errorf("failed to reset taken flags: %w", doseErr)
	}

	users, waterErr := r.water.ResetWaterIntakeBefore(ctx, cutoff)
	if waterErr != nil {
		waterErr = fmt.Errorf("failed to reset water intake: %w", waterErr)
	}

	if err := errors.Join(doseErr, waterErr); err != nil {
		return err
	}

	r.logger.Info("daily reset completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("medicines_reset", doses),
		zap.Int64("users_reset", users),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
