// Package scheduler provides cron-based scheduling for the daily reminder sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nestegg/backend/internal/service"
)

// Config holds the scheduler configuration
type Config struct {
	// Schedule is a cron expression for when to run the sweep (e.g., "0 8 * * *" for daily at 08:00)
	Schedule string
	// Timeout is the maximum duration for a complete sweep
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule: "0 8 * * *", // Every day at 08:00
		Timeout:  5 * time.Minute,
		Enabled:  true,
	}
}

// Scheduler runs the notification sweep on a cron schedule. The sweep is
// idempotent, so overlapping with the dashboard-triggered check is harmless.
type Scheduler struct {
	cron          *cron.Cron
	notifications *service.NotificationService
	config        Config
	logger        *slog.Logger
	entryID       cron.EntryID
}

// New creates a new Scheduler instance
func New(cfg Config, notifications *service.NotificationService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:          cron.New(),
		notifications: notifications,
		config:        cfg,
		logger:        logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate sweep (useful for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runSweep()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Info("Starting scheduled reminder sweep",
		slog.Time("start_time", startTime),
	)

	created, err := s.notifications.RunDailySweep(ctx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Reminder sweep failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	s.logger.Info("Reminder sweep completed",
		slog.Int("notifications_created", created),
		slog.Duration("duration", duration),
	)
}

// GetNextRunTime returns the next scheduled run time
func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
