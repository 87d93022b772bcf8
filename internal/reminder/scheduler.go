// Package reminder implements the polling reminder loop and its per-day dedup registry
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vcscsvcscs/medimind-backend/internal/adherence"
	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// DoseSource provides reminder recipients and their untaken doses for a day
type DoseSource interface {
	Recipients(ctx context.Context) ([]string, error)
	PendingDoses(ctx context.Context, userID string, day time.Time) ([]model.DoseOccurrence, error)
}

// Deliverer delivers a reminder alert. Implementations must not block indefinitely or panic.
type Deliverer interface {
	Deliver(ctx context.Context, userID string, dose model.DoseOccurrence)
}

// Config holds scheduler configuration
type Config struct {
	Interval      time.Duration // time between ticks
	WindowMinutes int           // max distance in minutes between now and the scheduled time
}

// Scheduler polls the dose source on a fixed interval and fires each dose's reminder at most once per day
type Scheduler struct {
	config    Config
	source    DoseSource
	deliverer Deliverer
	registry  *Registry
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastDay string
}

// NewScheduler creates a new Scheduler
func NewScheduler(config Config, source DoseSource, deliverer Deliverer, registry *Registry, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.WindowMinutes <= 0 {
		config.WindowMinutes = 1
	}
	if registry == nil {
		registry = NewRegistry()
	}

	return &Scheduler{
		config:    config,
		source:    source,
		deliverer: deliverer,
		registry:  registry,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Registry returns the dedup registry owned by the scheduler
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start launches the polling loop. The loop stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("reminder scheduler already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(loopCtx)

	s.logger.Info("reminder scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("window_minutes", s.config.WindowMinutes),
	)

	return nil
}

// Stop cancels the loop and waits for an in-flight tick to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// IsRunning returns whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.Tick(ctx, s.now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick runs one polling pass at now and returns the number of reminders fired
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	s.rollDay(now)

	recipients, err := s.source.Recipients(ctx)
	if err != nil {
		s.logger.Warn("failed to list reminder recipients", zap.Error(err))
		s.metrics.ReminderFetchFailed()
		return 0
	}

	fired := 0
	for _, userID := range recipients {
		if ctx.Err() != nil {
			return fired
		}
		fired += s.tickUser(ctx, userID, now)
	}

	if fired > 0 {
		s.logger.Info("reminder tick fired alerts",
			zap.Int("fired", fired),
			zap.Time("now", now),
		)
	}

	return fired
}

func (s *Scheduler) tickUser(ctx context.Context, userID string, now time.Time) int {
	doses, err := s.source.PendingDoses(ctx, userID, now)
	if err != nil {
		s.logger.Warn("failed to fetch pending doses",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		s.metrics.ReminderFetchFailed()
		return 0
	}

	currentMinutes := adherence.MinuteOfDay(now)
	fired := 0

	for _, dose := range doses {
		if dose.Taken {
			continue
		}

		scheduledMinutes, err := adherence.ParseClock(dose.ScheduledTime)
		if err != nil {
			s.logger.Warn("skipping dose with malformed time",
				zap.String("medicine_id", dose.MedicineID),
				zap.Int("slot", dose.Slot),
				zap.String("time", dose.ScheduledTime),
			)
			continue
		}

		if !withinWindow(currentMinutes, scheduledMinutes, s.config.WindowMinutes) {
			continue
		}

		// The key is recorded before delivery: a reminder counts as attempted, not confirmed
		if !s.registry.MarkIfAbsent(KeyFor(dose, now)) {
			continue
		}

		s.logger.Info("firing medicine reminder",
			zap.String("user_id", userID),
			zap.String("medicine_id", dose.MedicineID),
			zap.Int("slot", dose.Slot),
			zap.String("scheduled_time", dose.ScheduledTime),
		)
		s.deliverer.Deliver(ctx, userID, dose)
		s.metrics.ReminderFired()
		fired++
	}

	return fired
}

// rollDay prunes keys of previous days once the calendar day changes
func (s *Scheduler) rollDay(now time.Time) {
	today := now.Format(model.DateLayout)

	s.mu.Lock()
	changed := s.lastDay != today
	s.lastDay = today
	s.mu.Unlock()

	if changed {
		if removed := s.registry.PruneBefore(now); removed > 0 {
			s.logger.Debug("pruned reminder keys of previous days", zap.Int("removed", removed))
		}
	}
}

func withinWindow(current, scheduled, window int) bool {
	diff := current - scheduled
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
