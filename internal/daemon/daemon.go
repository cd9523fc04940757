package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/juju/clock"
	"github.com/robfig/cron/v3"

	"filecycle/internal/config"
	"filecycle/internal/journal"
	"filecycle/internal/logging"
	"filecycle/internal/metrics"
	"filecycle/internal/notifications"
	"filecycle/internal/rotation"
)

// ErrLocked is returned when another rotation holds the rotation lock.
var ErrLocked = errors.New("another rotation is in progress")

// Daemon serialises rotations of one root and optionally schedules them.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *journal.Store
	metrics  *metrics.Collector
	notifier notifications.Service
	manager  *rotation.Manager
	clock    clock.Clock
	remove   func(string) error

	lockPath string
	lock     *flock.Flock
	mu       sync.Mutex

	schedMu sync.Mutex
	cron    *cron.Cron
	running atomic.Bool
}

// Option customises a Daemon.
type Option func(*Daemon)

// WithClock overrides the clock used for naming snapshots and timing runs.
func WithClock(clk clock.Clock) Option {
	return func(d *Daemon) {
		if clk != nil {
			d.clock = clk
		}
	}
}

// WithMetrics attaches a Prometheus collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Daemon) {
		d.metrics = collector
	}
}

// WithRemover overrides how replaced and expired snapshots are deleted.
func WithRemover(fn func(path string) error) Option {
	return func(d *Daemon) {
		d.remove = fn
	}
}

// WithNotifier overrides the notification service built from the config.
func WithNotifier(svc notifications.Service) Option {
	return func(d *Daemon) {
		if svc != nil {
			d.notifier = svc
		}
	}
}

// Status represents daemon runtime information.
type Status struct {
	Running     bool
	Schedule    string
	NextRun     *string
	Root        string
	WorkingDir  string
	Retention   string
	LockPath    string
	JournalPath string
}

// New constructs a daemon and the rotation manager for cfg. The rotation
// root and its working folder are created if missing.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, journal store, and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		clock:    clock.WallClock,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
		notifier: notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(d)
	}

	rotationOpts := cfg.RotationOptions()
	rotationOpts.Clock = d.clock
	rotationOpts.RemoveAll = d.remove
	manager, err := rotation.New(rotationOpts)
	if err != nil {
		return nil, fmt.Errorf("init rotation root: %w", err)
	}
	d.manager = manager
	return d, nil
}

// Manager exposes the rotation manager for read-only callers.
func (d *Daemon) Manager() *rotation.Manager {
	return d.manager
}

// Running reports whether the scheduler is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:     d.running.Load(),
		Schedule:    d.cfg.Schedule.Cron,
		Root:        d.manager.Root(),
		WorkingDir:  d.manager.WorkingDir(),
		Retention:   d.manager.Retention().String(),
		LockPath:    d.lockPath,
		JournalPath: d.store.Path(),
	}
	if next := d.NextRun(); next != nil {
		formatted := next.Format("2006-01-02 15:04:05 MST")
		status.NextRun = &formatted
	}
	return status
}

// Close stops the scheduler and releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// acquire takes the in-process mutex and the cross-process file lock.
func (d *Daemon) acquire() (func(), error) {
	if !d.mu.TryLock() {
		return nil, ErrLocked
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		d.mu.Unlock()
		return nil, ErrLocked
	}
	return func() {
		if err := d.lock.Unlock(); err != nil {
			logging.WarnWithContext(d.logger, "failed to release rotation lock", "lock_release_failed",
				logging.String("lock", d.lockPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no filecycle process is running"),
				logging.String(logging.FieldImpact, "later rotations may report the lock as held"),
			)
		}
		d.mu.Unlock()
	}, nil
}
