package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	envWorkdirPrefix = "WORKDIR_PREFIX"
	envWorkdir       = "WORKDIR"
)

func (c *Config) normalize() error {
	if err := c.normalizeRotation(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSchedule()
	c.normalizeMetrics()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeRotation() error {
	c.Rotation.Prefix = strings.TrimSpace(c.Rotation.Prefix)
	if c.Rotation.Prefix == "" {
		if value, ok := os.LookupEnv(envWorkdirPrefix); ok {
			c.Rotation.Prefix = strings.TrimSpace(value)
		}
	}
	if c.Rotation.Prefix == "" {
		c.Rotation.Prefix = os.TempDir()
	}
	var err error
	if c.Rotation.Prefix, err = expandPath(c.Rotation.Prefix); err != nil {
		return fmt.Errorf("rotation.prefix: %w", err)
	}

	c.Rotation.Name = strings.TrimSpace(c.Rotation.Name)
	if c.Rotation.Name == "" {
		if value, ok := os.LookupEnv(envWorkdir); ok {
			c.Rotation.Name = strings.TrimSpace(value)
		}
	}
	c.Rotation.Name = strings.TrimLeft(c.Rotation.Name, `/\`)
	if c.Rotation.Name == "" {
		c.Rotation.Name = defaultRotationName
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	c.Metrics.Path = strings.TrimSpace(c.Metrics.Path)
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaultMetricsPath
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		c.Metrics.Path = "/" + c.Metrics.Path
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "console", "json", "auto":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
