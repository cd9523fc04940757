package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filecycle/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WORKDIR_PREFIX", "")
	t.Setenv("WORKDIR", "")
	os.Unsetenv("WORKDIR_PREFIX")
	os.Unsetenv("WORKDIR")
	return home
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolate(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %q", path)
	}
	if want := filepath.Join(home, ".config", "filecycle", "config.toml"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if cfg.Rotation.Prefix != tmp {
		t.Fatalf("prefix = %q, want %q", cfg.Rotation.Prefix, tmp)
	}
	if cfg.Rotation.Name != "rotation" {
		t.Fatalf("name = %q, want rotation", cfg.Rotation.Name)
	}
	if cfg.Rotation.RetentionDays != 30 {
		t.Fatalf("retention_days = %d, want 30", cfg.Rotation.RetentionDays)
	}
	if cfg.RootDir() != filepath.Join(tmp, "rotation") {
		t.Fatalf("RootDir = %q", cfg.RootDir())
	}
	if want := filepath.Join(home, ".local", "share", "filecycle"); cfg.Paths.StateDir != want {
		t.Fatalf("state_dir = %q, want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Schedule.Cron != "0 0 * * *" {
		t.Fatalf("cron = %q", cfg.Schedule.Cron)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("metrics path = %q", cfg.Metrics.Path)
	}
	if cfg.Notifications.NtfyTopic != "" || cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("notifications = %+v", cfg.Notifications)
	}
}

func TestLoadEnvironmentFallbacks(t *testing.T) {
	isolate(t)
	prefix := t.TempDir()
	t.Setenv("WORKDIR_PREFIX", prefix)
	t.Setenv("WORKDIR", "/nightly")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Rotation.Prefix != prefix {
		t.Fatalf("prefix = %q, want %q", cfg.Rotation.Prefix, prefix)
	}
	if cfg.Rotation.Name != "nightly" {
		t.Fatalf("name = %q, want nightly", cfg.Rotation.Name)
	}
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("WORKDIR_PREFIX", t.TempDir())
	prefix := t.TempDir()
	state := t.TempDir()
	path := writeConfig(t, `
[rotation]
prefix = "`+prefix+`"
name = "builds"
retention_days = 7

[schedule]
cron = "30 2 * * *"
rotate_on_start = true

[paths]
state_dir = "`+state+`"

[metrics]
bind = "127.0.0.1:9464"
path = "stats"

[logging]
format = "JSON"
level = "DEBUG"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Rotation.Prefix != prefix || cfg.Rotation.Name != "builds" {
		t.Fatalf("rotation = %+v", cfg.Rotation)
	}
	if days, bounded := cfg.Retention().Days(); !bounded || days != 7 {
		t.Fatalf("retention = %d bounded=%v, want 7", days, bounded)
	}
	if !cfg.Schedule.RotateOnStart || cfg.Schedule.Cron != "30 2 * * *" {
		t.Fatalf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Metrics.Path != "/stats" {
		t.Fatalf("metrics path = %q, want /stats", cfg.Metrics.Path)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.LockPath() != filepath.Join(state, "filecycle.lock") {
		t.Fatalf("LockPath = %q", cfg.LockPath())
	}
	if cfg.JournalPath() != filepath.Join(state, "journal.db") {
		t.Fatalf("JournalPath = %q", cfg.JournalPath())
	}
	opts := cfg.RotationOptions()
	if opts.Prefix != prefix || opts.Name != "builds" {
		t.Fatalf("RotationOptions = %+v", opts)
	}
}

func TestKeepForeverIgnoresRetentionDays(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[rotation]
prefix = "`+t.TempDir()+`"
retention_days = -1
keep_forever = true
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, bounded := cfg.Retention().Days(); bounded {
		t.Fatal("expected unbounded retention")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "negative retention",
			body: "[rotation]\nretention_days = -3\n",
			want: "rotation.retention_days",
		},
		{
			name: "escaping name",
			body: "[rotation]\nname = \"../outside\"\n",
			want: "rotation.name",
		},
		{
			name: "bad cron",
			body: "[schedule]\ncron = \"every day\"\n",
			want: "schedule.cron",
		},
		{
			name: "bad level",
			body: "[logging]\nlevel = \"loud\"\n",
			want: "logging.level",
		},
		{
			name: "ntfy topic without scheme",
			body: "[notifications]\nntfy_topic = \"ntfy.sh/rotations\"\n",
			want: "notifications.ntfy_topic",
		},
		{
			name: "unknown key",
			body: "[rotation]\nretention = 3\n",
			want: "parse config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("WORKDIR_PREFIX", t.TempDir())
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsStateInsideRoot(t *testing.T) {
	isolate(t)
	prefix := t.TempDir()
	path := writeConfig(t, `
[rotation]
prefix = "`+prefix+`"
name = "r"

[paths]
state_dir = "`+filepath.Join(prefix, "r", "state")+`"
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "paths.state_dir") {
		t.Fatalf("expected state_dir error, got %v", err)
	}
}

func TestValidateRejectsLogDirInsideRoot(t *testing.T) {
	isolate(t)
	prefix := t.TempDir()
	for _, logDir := range []string{
		filepath.Join(prefix, "r", "latest"),
		filepath.Join(prefix, "r"),
	} {
		path := writeConfig(t, `
[rotation]
prefix = "`+prefix+`"
name = "r"

[paths]
log_dir = "`+logDir+`"
`)
		if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "paths.log_dir") {
			t.Fatalf("log_dir %s: expected log_dir error, got %v", logDir, err)
		}
	}
}

func TestValidateAcceptsLogDirBesideRoot(t *testing.T) {
	isolate(t)
	prefix := t.TempDir()
	path := writeConfig(t, `
[rotation]
prefix = "`+prefix+`"
name = "r"

[paths]
log_dir = "`+filepath.Join(prefix, "r-logs")+`"
`)
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sibling log_dir should be accepted: %v", err)
	}
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)
	body := "[rotation]\nprefix = \"" + t.TempDir() + "\"\nname = \"project\"\n"
	if err := os.WriteFile(filepath.Join(dir, "filecycle.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(path) != "filecycle.toml" {
		t.Fatalf("path = %q exists = %v", path, exists)
	}
	if cfg.Rotation.Name != "project" {
		t.Fatalf("name = %q", cfg.Rotation.Name)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	isolate(t)
	t.Setenv("WORKDIR_PREFIX", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample not found")
	}
	if cfg.Rotation.RetentionDays != 30 {
		t.Fatalf("retention_days = %d", cfg.Rotation.RetentionDays)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := isolate(t)
	got, err := config.ExpandPath("~/data")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if want := filepath.Join(home, "data"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}
