package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "reminderd.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "* * * * *", cfg.Tick)
	assert.Equal(t, "auto", cfg.Notifier)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminderd.yaml")
	body := "config_dir: /srv/reminder\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/reminder", cfg.ConfigDir)
	assert.Equal(t, "auto", cfg.Notifier)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:8089", cfg.Listen)
	assert.Nil(t, cfg.BasicAuth)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminderd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Tick = "every minute"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BasicAuth = &BasicAuthConfig{Password: "x"}
	assert.Error(t, cfg.Validate())
}

func TestLoadKeepsUnknownNotifierForValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminderd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notifier: macOS\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "macOS", cfg.Notifier)
	assert.ErrorContains(t, cfg.Validate(), `notifier "macOS"`)

	for _, name := range []string{"auto", "macos", "linux", "log"} {
		cfg.Notifier = name
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestScheduleDirEnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfigDir = "/from/yaml"
	t.Setenv(EnvConfigDir, "")
	assert.Equal(t, "/from/yaml", cfg.ScheduleDir())

	t.Setenv(EnvConfigDir, "/from/env")
	assert.Equal(t, "/from/env", cfg.ScheduleDir())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv(EnvConfigDir, "~/sched")
	assert.Equal(t, filepath.Join(home, "sched"), cfg.ScheduleDir())
}
