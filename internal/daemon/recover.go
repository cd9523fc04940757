package daemon

import (
	"context"

	"filecycle/internal/logging"
	"filecycle/internal/staging"
)

// Recover cleans up after interrupted rotations under the rotation lock.
// Discard folders are removed; with restore set, staging folders are
// published as snapshots for the day they were staged.
func (d *Daemon) Recover(ctx context.Context, restore bool) (staging.Result, error) {
	release, err := d.acquire()
	if err != nil {
		return staging.Result{}, err
	}
	defer release()

	_, logger := d.runContext(ctx)
	root := d.manager.Root()

	result := staging.CleanDiscarded(root, logger)
	if restore {
		restored := staging.Restore(root, d.manager.Location(), logger)
		result.Restored = restored.Restored
		result.Skipped = append(result.Skipped, restored.Skipped...)
		result.Errors = append(result.Errors, restored.Errors...)
	}
	d.refreshSnapshotGauge()

	logger.Info("recovery finished",
		logging.String(logging.FieldEventType, "recovery_finished"),
		logging.Int("removed", len(result.Removed)),
		logging.Int("restored", len(result.Restored)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result, result.Err()
}
