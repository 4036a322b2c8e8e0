package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/example/pulse/internal/apperr"
	"github.com/example/pulse/internal/core/checkin"
	"github.com/example/pulse/internal/ports/primary"
)

// DaemonOptions configures the ReminderDaemon.
type DaemonOptions struct {
	Location *time.Location
	Hour     int           // org-local hour from which the day's run may fire
	Interval time.Duration // how often the clock is checked
	LockFile string        // host-wide lock; empty disables locking
}

// ReminderDaemon fires the reminder run once per organization-local day.
// Missed days are not replayed.
type ReminderDaemon struct {
	reminders primary.ReminderService
	opts      DaemonOptions
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	lastRun string // date of the last successful run by this process
}

// NewReminderDaemon creates a daemon driving reminders.
func NewReminderDaemon(reminders primary.ReminderService, opts DaemonOptions, logger *zap.Logger) *ReminderDaemon {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &ReminderDaemon{
		reminders: reminders,
		opts:      opts,
		logger:    logger.Named("daemon"),
		now:       time.Now,
	}
}

// Start blocks until ctx is done. It returns a conflict error when another
// daemon on this host holds the lock file.
func (d *ReminderDaemon) Start(ctx context.Context) error {
	if d.opts.LockFile != "" {
		if err := os.MkdirAll(filepath.Dir(d.opts.LockFile), 0755); err != nil {
			return fmt.Errorf("failed to create lock directory: %w", err)
		}
		lock := flock.New(d.opts.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquiring daemon lock: %w", err)
		}
		if !locked {
			return apperr.Conflict("another reminder daemon holds %s", d.opts.LockFile)
		}
		defer func() { _ = lock.Unlock() }()
	}

	d.logger.Info("reminder daemon started",
		zap.Int("hour", d.opts.Hour),
		zap.Duration("interval", d.opts.Interval),
		zap.String("timezone", d.opts.Location.String()),
	)

	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	d.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder daemon stopped")
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs today's reminders if the configured hour has passed and this
// process has not run them yet. A failed run is retried on the next tick.
func (d *ReminderDaemon) Tick(ctx context.Context) {
	now := d.now().In(d.opts.Location)
	if now.Hour() < d.opts.Hour {
		return
	}
	date := checkin.Today(now, d.opts.Location)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastRun == date {
		return
	}

	summary, err := d.reminders.Run(ctx, date)
	if err != nil {
		d.logger.Error("reminder run failed", zap.String("date", date), zap.Error(err))
		return
	}
	d.lastRun = date
	d.logger.Info("daily reminders done",
		zap.String("date", date),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
	)
}
