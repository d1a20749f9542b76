// Package scheduler delivers due reminders and periodically cleans up the
// reminder store.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"remindbot/reminder"
	"remindbot/state"
)

// Store is the part of the reminder store the scheduler needs.
type Store interface {
	Due(ctx context.Context, before time.Time) ([]*reminder.Reminder, error)
	UsersFor(ctx context.Context, id uuid.UUID) ([]string, error)
	SetStatus(ctx context.Context, id uuid.UUID, status reminder.Status) error
	Vacuum(ctx context.Context, olderThan time.Time) (state.VacuumResult, error)
}

// Config holds configuration for the scheduler.
type Config struct {
	Interval       time.Duration // How often to check for due reminders
	VacuumSchedule string        // Cron spec for store cleanup; empty disables it
	Retention      time.Duration // How long delivered reminders are kept
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Interval:       time.Second,
		VacuumSchedule: "0 3 * * mon",
		Retention:      7 * 24 * time.Hour,
	}
}

// Tally counts the outcome of one delivery cycle.
type Tally struct {
	Messaged int
	Skipped  int
}

// Scheduler polls the store for due reminders and hands them to a Notifier.
type Scheduler struct {
	store    Store
	notifier Notifier
	config   Config
	logger   *zap.Logger
	now      func() time.Time

	cron    *cron.Cron
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// New creates a scheduler. A nil logger disables logging.
func New(store Store, notifier Notifier, config Config, logger *zap.Logger) (*Scheduler, error) {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Retention <= 0 {
		config.Retention = DefaultConfig().Retention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		store:    store,
		notifier: notifier,
		config:   config,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	if config.VacuumSchedule != "" {
		if _, err := cron.ParseStandard(config.VacuumSchedule); err != nil {
			return nil, fmt.Errorf("invalid vacuum schedule %q: %w", config.VacuumSchedule, err)
		}
	}
	return s, nil
}

// SetClock replaces the time source.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start begins the delivery loop and the vacuum job. Starting a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if s.config.VacuumSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.config.VacuumSchedule, func() { s.vacuum(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule vacuum: %w", err)
		}
		c.Start()
		s.cron = c
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reminder scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.String("vacuum_schedule", s.config.VacuumSchedule))
	return nil
}

// Stop stops the scheduler and waits for running work to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	tally, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("failed to process due reminders", zap.Error(err))
		return
	}
	if tally.Messaged > 0 || tally.Skipped > 0 {
		s.logger.Info("processed due reminders",
			zap.Int("messaged", tally.Messaged),
			zap.Int("skipped", tally.Skipped))
	}
}

// RunOnce delivers every reminder that is due now. A reminder whose delivery
// fails stays pending and is retried on the next cycle.
func (s *Scheduler) RunOnce(ctx context.Context) (Tally, error) {
	var tally Tally

	due, err := s.store.Due(ctx, s.now())
	if err != nil {
		return tally, fmt.Errorf("failed to load due reminders: %w", err)
	}

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		users, err := s.store.UsersFor(ctx, r.ID)
		if err != nil {
			return tally, fmt.Errorf("failed to load subscribers of %s: %w", r.ID, err)
		}

		if err := s.notifier.Notify(ctx, r, users); err != nil {
			tally.Skipped++
			s.logger.Warn("reminder delivery failed",
				zap.Stringer("id", r.ID),
				zap.Error(err))
			continue
		}

		if err := s.store.SetStatus(ctx, r.ID, reminder.Triggered); err != nil {
			return tally, fmt.Errorf("failed to mark %s triggered: %w", r.ID, err)
		}
		tally.Messaged++
	}

	return tally, nil
}

// Vacuum removes delivered reminders older than the retention period.
func (s *Scheduler) Vacuum(ctx context.Context) (state.VacuumResult, error) {
	return s.store.Vacuum(ctx, s.now().Add(-s.config.Retention))
}

func (s *Scheduler) vacuum(ctx context.Context) {
	result, err := s.Vacuum(ctx)
	if err != nil {
		s.logger.Error("reminder vacuum failed", zap.Error(err))
		return
	}
	s.logger.Info("reminder vacuum finished",
		zap.Int64("jobs", result.Jobs),
		zap.Int64("links", result.Links))
}
