package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"filecycle/internal/journal"
	"filecycle/internal/logging"
	"filecycle/internal/metrics"
	"filecycle/internal/notifications"
	"filecycle/internal/rotation"
)

// RotateOnce performs one rotation under the rotation lock, journals it, and
// updates metrics. It fails fast with ErrLocked when another rotation runs.
func (d *Daemon) RotateOnce(ctx context.Context) (rotation.RotateResult, error) {
	release, err := d.acquire()
	if err != nil {
		d.metrics.RecordRotation(metrics.ResultSkipped, 0, d.clock.Now())
		logging.WarnWithContext(d.logger, "rotation skipped", "rotation_skipped",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "wait for the running rotation to finish"),
			logging.String(logging.FieldImpact, "working folder was not rotated"),
		)
		return rotation.RotateResult{}, err
	}
	defer release()

	ctx, logger := d.runContext(ctx)
	snapshot := rotation.FolderName(d.manager.Today())
	started := d.clock.Now()
	run, err := d.store.Begin(ctx, journal.Run{
		Kind:          journal.KindRotate,
		Root:          d.manager.Root(),
		Snapshot:      snapshot,
		CorrelationID: correlationID(ctx),
		StartedAt:     started,
	})
	if err != nil {
		return rotation.RotateResult{}, fmt.Errorf("journal rotation: %w", err)
	}

	logger.Info("rotation started",
		logging.String(logging.FieldEventType, "rotation_started"),
		logging.String(logging.FieldRoot, d.manager.Root()),
		logging.String(logging.FieldSnapshot, snapshot),
	)

	result, rotateErr := d.manager.Rotate()
	finished := d.clock.Now()
	pruneFailures := countPruneFailures(rotateErr)
	published := result.Published

	if err := d.store.Finish(ctx, run.ID, journal.Outcome{
		Snapshot:   result.Snapshot,
		Replaced:   result.Replaced,
		Pruned:     len(result.Prune.Removed),
		Err:        rotateErr,
		FinishedAt: finished,
	}); err != nil {
		logging.WarnWithContext(logger, "failed to journal rotation outcome", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the run as unfinished"),
		)
	}

	duration := finished.Sub(started)
	if published {
		d.metrics.RecordRotation(metrics.ResultSuccess, duration, finished)
	} else {
		d.metrics.RecordRotation(metrics.ResultError, duration, finished)
	}
	d.metrics.RecordPrune(len(result.Prune.Removed), pruneFailures)
	d.refreshSnapshotGauge()
	d.logPruned(logger, result.Prune)

	switch {
	case !published:
		logging.ErrorWithContext(logger, "rotation failed", "rotation_failed",
			logging.String(logging.FieldSnapshot, snapshot),
			logging.Error(rotateErr),
			logging.String(logging.FieldErrorHint, "check permissions on the rotation root and run filecycle doctor"),
		)
		d.notify(ctx, logger, notifications.EventRotationFailed, notifications.Payload{
			"root":  d.manager.Root(),
			"error": rotateErr,
		})
	case isDiscardFailure(rotateErr):
		logging.WarnWithContext(logger, "rotation completed; replaced snapshot not removed", "discard_failed",
			logging.String(logging.FieldSnapshot, result.Snapshot),
			logging.Error(rotateErr),
			logging.String(logging.FieldErrorHint, "run filecycle recover to remove the leftover "+rotation.DiscardPrefix+"* folder"),
			logging.String(logging.FieldImpact, "the replaced snapshot still uses disk space"),
		)
		d.notify(ctx, logger, notifications.EventDiscardFailed, notifications.Payload{
			"root":     d.manager.Root(),
			"snapshot": result.Snapshot,
			"error":    rotateErr,
		})
	case rotateErr != nil:
		logging.WarnWithContext(logger, "rotation completed; retention incomplete", "retention_failed",
			logging.String(logging.FieldSnapshot, result.Snapshot),
			logging.Int("prune_failures", pruneFailures),
			logging.Error(rotateErr),
			logging.String(logging.FieldErrorHint, "check permissions on the listed snapshot folders"),
			logging.String(logging.FieldImpact, "expired snapshots remain on disk"),
		)
		d.notify(ctx, logger, notifications.EventRetentionIncomplete, notifications.Payload{
			"snapshot": result.Snapshot,
			"failed":   pruneFailures,
			"error":    rotateErr,
		})
	default:
		logger.Info("rotation completed",
			logging.String(logging.FieldEventType, "rotation_completed"),
			logging.String(logging.FieldSnapshot, result.Snapshot),
			slog.Bool("replaced", result.Replaced),
			logging.Int("pruned", len(result.Prune.Removed)),
			slog.Duration("duration", duration),
		)
		d.notify(ctx, logger, notifications.EventRotationCompleted, notifications.Payload{
			"root":     d.manager.Root(),
			"snapshot": result.Snapshot,
			"replaced": result.Replaced,
			"pruned":   len(result.Prune.Removed),
		})
	}
	return result, rotateErr
}

// PruneOnce applies retention under the rotation lock without rotating.
func (d *Daemon) PruneOnce(ctx context.Context) (rotation.PruneResult, error) {
	release, err := d.acquire()
	if err != nil {
		return rotation.PruneResult{}, err
	}
	defer release()

	ctx, logger := d.runContext(ctx)
	run, err := d.store.Begin(ctx, journal.Run{
		Kind:          journal.KindPrune,
		Root:          d.manager.Root(),
		CorrelationID: correlationID(ctx),
		StartedAt:     d.clock.Now(),
	})
	if err != nil {
		return rotation.PruneResult{}, fmt.Errorf("journal prune: %w", err)
	}

	result, pruneErr := d.manager.Prune()
	if err := d.store.Finish(ctx, run.ID, journal.Outcome{
		Pruned:     len(result.Removed),
		Err:        pruneErr,
		FinishedAt: d.clock.Now(),
	}); err != nil {
		logging.WarnWithContext(logger, "failed to journal prune outcome", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the run as unfinished"),
		)
	}

	d.metrics.RecordPrune(len(result.Removed), countPruneFailures(pruneErr))
	d.refreshSnapshotGauge()
	d.logPruned(logger, result)

	if pruneErr != nil {
		logging.ErrorWithContext(logger, "retention failed", "retention_failed",
			logging.Error(pruneErr),
			logging.String(logging.FieldErrorHint, "check permissions on the rotation root"),
		)
		return result, pruneErr
	}
	logger.Info("retention applied",
		logging.String(logging.FieldEventType, "retention_applied"),
		logging.String("retention", d.manager.Retention().String()),
		logging.Int("pruned", len(result.Removed)),
	)
	return result, nil
}

func (d *Daemon) runContext(ctx context.Context) (context.Context, *slog.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := logging.CorrelationIDFromContext(ctx); !ok {
		ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	}
	return ctx, logging.WithContext(ctx, d.logger)
}

func (d *Daemon) logPruned(logger *slog.Logger, result rotation.PruneResult) {
	for _, name := range result.Removed {
		logger.Info("snapshot pruned",
			logging.String(logging.FieldEventType, "snapshot_pruned"),
			logging.String(logging.FieldSnapshot, name),
			logging.String("cutoff", rotation.FolderName(result.Cutoff)),
		)
	}
}

func (d *Daemon) refreshSnapshotGauge() {
	snapshots, err := d.manager.Snapshots()
	if err != nil {
		return
	}
	d.metrics.SetSnapshots(len(snapshots))
}

func correlationID(ctx context.Context) string {
	id, _ := logging.CorrelationIDFromContext(ctx)
	return id
}

// countPruneFailures counts the per-folder failures Prune joined together.
func countPruneFailures(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		count := 0
		for _, e := range joined.Unwrap() {
			count += countPruneFailures(e)
		}
		return count
	}
	var opErr *rotation.OpError
	if errors.As(err, &opErr) && opErr.Op == rotation.OpPrune {
		return 1
	}
	return 0
}

// isDiscardFailure reports whether a published rotation failed to remove the
// same-day snapshot it replaced.
func isDiscardFailure(err error) bool {
	var opErr *rotation.OpError
	return errors.As(err, &opErr) && opErr.Op == rotation.OpDiscard
}

// notify publishes an event; delivery failures are logged and otherwise ignored.
func (d *Daemon) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}
