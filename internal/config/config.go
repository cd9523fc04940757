package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"filecycle/internal/rotation"
)

//go:embed sample_config.toml
var sampleConfig string

// Rotation describes the managed root and its retention policy.
type Rotation struct {
	Prefix        string `toml:"prefix"`
	Name          string `toml:"name"`
	RetentionDays int    `toml:"retention_days"`
	KeepForever   bool   `toml:"keep_forever"`
}

// Schedule controls when the daemon rotates.
type Schedule struct {
	Cron          string `toml:"cron"`
	RotateOnStart bool   `toml:"rotate_on_start"`
}

// Paths contains directories owned by filecycle itself, outside the rotation root.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Metrics configures the Prometheus endpoint served by `filecycle run`.
type Metrics struct {
	Bind string `toml:"bind"`
	Path string `toml:"path"`
}

// Preflight contains thresholds for readiness checks.
type Preflight struct {
	MinFreeMiB int `toml:"min_free_mib"`
}

// Notifications configures ntfy delivery of rotation events.
type Notifications struct {
	NtfyTopic       string `toml:"ntfy_topic"`
	RequestTimeout  int    `toml:"request_timeout"`
	NotifyOnSuccess bool   `toml:"notify_on_success"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for filecycle.
//
// Configuration sections by subsystem:
//   - Rotation: root location and snapshot retention
//   - Schedule: cron expression for the daemon
//   - Paths: state (lock, journal) and log directories
//   - Metrics: Prometheus endpoint
//   - Preflight: readiness thresholds
//   - Notifications: ntfy topic for rotation events
//   - Logging: log format, level, and retention
type Config struct {
	Rotation      Rotation      `toml:"rotation"`
	Schedule      Schedule      `toml:"schedule"`
	Paths         Paths         `toml:"paths"`
	Metrics       Metrics       `toml:"metrics"`
	Preflight     Preflight     `toml:"preflight"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filecycle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The rotation root
// is created by the rotation manager itself.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RootDir returns the managed rotation root, prefix joined with name.
func (c *Config) RootDir() string {
	return filepath.Join(c.Rotation.Prefix, strings.TrimLeft(c.Rotation.Name, `/\`))
}

// Retention returns the snapshot retention policy.
func (c *Config) Retention() rotation.Retention {
	if c.Rotation.KeepForever {
		return rotation.KeepForever()
	}
	return rotation.KeepDays(c.Rotation.RetentionDays)
}

// RotationOptions converts the configuration into rotation manager options.
func (c *Config) RotationOptions() rotation.Options {
	return rotation.Options{
		Prefix:    c.Rotation.Prefix,
		Name:      c.Rotation.Name,
		Retention: c.Retention(),
	}
}

// LockPath is the cross-process rotation lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "filecycle.lock")
}

// JournalPath is the SQLite rotation journal.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() []byte {
	return []byte(sampleConfig)
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
