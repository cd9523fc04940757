package testsupport

import (
	"path/filepath"
	"testing"

	"filecycle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The rotation root is <base>/prefix/rotation; state and logs live beside it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Rotation.Prefix = filepath.Join(base, "prefix")
	cfgVal.Rotation.Name = "rotation"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Metrics.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRetentionDays sets a bounded retention window.
func WithRetentionDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rotation.RetentionDays = days
		b.cfg.Rotation.KeepForever = false
	}
}

// WithKeepForever disables pruning.
func WithKeepForever() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rotation.KeepForever = true
	}
}

// WithSchedule overrides the cron expression and rotate-on-start flag.
func WithSchedule(expr string, rotateOnStart bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Schedule.Cron = expr
		b.cfg.Schedule.RotateOnStart = rotateOnStart
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
