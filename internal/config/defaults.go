package config

const (
	defaultConfigPath         = "~/.config/filecycle/config.toml"
	defaultRotationName       = "rotation"
	defaultRetentionDays      = 30
	defaultScheduleCron       = "0 0 * * *"
	defaultStateDir           = "~/.local/share/filecycle"
	defaultLogDir             = "~/.local/share/filecycle/logs"
	defaultMetricsPath        = "/metrics"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultPreflightMinFreeMB = 0
	defaultNtfyTimeout        = 10
)

// Default returns a Config populated with repository defaults. Rotation
// prefix and name stay empty so normalize can apply environment fallbacks
// before the built-in defaults.
func Default() Config {
	return Config{
		Rotation: Rotation{
			RetentionDays: defaultRetentionDays,
		},
		Schedule: Schedule{
			Cron: defaultScheduleCron,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Metrics: Metrics{
			Path: defaultMetricsPath,
		},
		Preflight: Preflight{
			MinFreeMiB: defaultPreflightMinFreeMB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
