package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRotation(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRotation() error {
	if !c.Rotation.KeepForever && c.Rotation.RetentionDays < 0 {
		return fmt.Errorf("rotation.retention_days must be >= 0 (got %d); set rotation.keep_forever to disable pruning", c.Rotation.RetentionDays)
	}
	if !filepath.IsLocal(c.Rotation.Name) {
		return fmt.Errorf("rotation.name %q must stay inside rotation.prefix", c.Rotation.Name)
	}
	if c.Paths.StateDir == c.RootDir() || isWithin(c.RootDir(), c.Paths.StateDir) {
		return errors.New("paths.state_dir must not live inside the rotation root")
	}
	if c.Paths.LogDir != "" && (c.Paths.LogDir == c.RootDir() || isWithin(c.RootDir(), c.Paths.LogDir)) {
		return errors.New("paths.log_dir must not live inside the rotation root")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Cron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", c.Schedule.Cron, err)
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.MinFreeMiB < 0 {
		return errors.New("preflight.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel)
}
