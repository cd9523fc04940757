package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"filecycle/internal/logging"
	"filecycle/internal/notifications"
	"filecycle/internal/preflight"
)

// Start runs preflight checks, reports interrupted runs, and schedules
// RotateOnce on the configured cron expression. With rotate_on_start set, one
// rotation runs before Start returns. The scheduler stops when ctx is done.
func (d *Daemon) Start(ctx context.Context) error {
	d.schedMu.Lock()
	defer d.schedMu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	expr := d.cfg.Schedule.Cron
	if expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
		}
	}

	d.runPreflight()
	d.reportUnfinished(ctx)
	d.reportLeftovers(ctx)
	d.applyHousekeeping(ctx)

	if d.cfg.Schedule.RotateOnStart {
		_, _ = d.RotateOnce(ctx)
	}

	d.cron = cron.New()
	if expr != "" {
		if _, err := d.cron.AddFunc(expr, func() {
			_, _ = d.RotateOnce(ctx)
		}); err != nil {
			return fmt.Errorf("schedule rotation: %w", err)
		}
	}
	d.cron.Start()
	d.running.Store(true)

	d.logger.Info("rotation scheduler started",
		logging.String(logging.FieldEventType, "scheduler_started"),
		logging.String("schedule", expr),
		logging.String(logging.FieldRoot, d.manager.Root()),
		logging.String("retention", d.manager.Retention().String()),
		logging.String("lock", d.lockPath),
	)

	go func() {
		<-ctx.Done()
		d.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running rotation to finish.
func (d *Daemon) Stop() {
	d.schedMu.Lock()
	defer d.schedMu.Unlock()

	if d.cron == nil || !d.running.Load() {
		return
	}
	stopped := d.cron.Stop()
	<-stopped.Done()
	d.running.Store(false)
	d.logger.Info("rotation scheduler stopped",
		logging.String(logging.FieldEventType, "scheduler_stopped"),
	)
}

// NextRun returns the next scheduled rotation, or nil when nothing is scheduled.
func (d *Daemon) NextRun() *time.Time {
	d.schedMu.Lock()
	defer d.schedMu.Unlock()

	if d.cron == nil || !d.running.Load() {
		return nil
	}
	entries := d.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

func (d *Daemon) runPreflight() {
	for _, result := range preflight.Failed(preflight.RunAll(d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run filecycle doctor for details"),
			logging.String(logging.FieldImpact, "scheduled rotations may fail"),
		)
	}
}

func (d *Daemon) reportUnfinished(ctx context.Context) {
	runs, err := d.store.Unfinished(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "failed to read journal", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "interrupted rotations are not reported"),
		)
		return
	}
	for _, run := range runs {
		logging.WarnWithContext(d.logger, "previous run did not finish", "run_interrupted",
			logging.String("run_id", run.ID),
			logging.String("kind", string(run.Kind)),
			logging.String(logging.FieldSnapshot, run.Snapshot),
			logging.String("started_at", run.StartedAt.Format(time.RFC3339)),
			logging.String(logging.FieldErrorHint, "look for .rotate-* folders under the rotation root"),
			logging.String(logging.FieldImpact, "working folder content may sit in a staging folder"),
		)
	}
}

func (d *Daemon) reportLeftovers(ctx context.Context) {
	leftovers, err := d.manager.Leftovers()
	if err != nil || len(leftovers) == 0 {
		return
	}
	d.notify(ctx, d.logger, notifications.EventLeftoversFound, notifications.Payload{
		"root":  d.manager.Root(),
		"count": len(leftovers),
	})
}

// applyHousekeeping trims rotated log files and finished journal rows using the
// log retention window.
func (d *Daemon) applyHousekeeping(ctx context.Context) {
	days := d.cfg.Logging.RetentionDays
	if days <= 0 {
		return
	}
	now := d.clock.Now()
	logging.PruneLogDir(d.logger, d.cfg.Paths.LogDir, days, now)
	cutoff := now.AddDate(0, 0, -days)
	if removed, err := d.store.PruneBefore(ctx, cutoff); err != nil {
		logging.WarnWithContext(d.logger, "failed to trim journal", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "journal keeps old runs"),
		)
	} else if removed > 0 {
		d.logger.Debug("journal trimmed", logging.Int("removed", int(removed)))
	}
}
