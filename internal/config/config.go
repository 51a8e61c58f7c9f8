package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"reminder/internal/jsonfile"
)

// EnvConfigDir overrides Config.ConfigDir when set.
const EnvConfigDir = "REMINDER_CONFIG_DIR"

// BasicAuthConfig holds HTTP Basic Auth credentials for the status API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is console or json.
	Format string `yaml:"format" json:"format"`
}

// Config is the daemon and CLI configuration. The schedule itself lives in
// the TOML files under ConfigDir.
type Config struct {
	// ConfigDir holds settings.toml, odd_weeks.toml and even_weeks.toml.
	ConfigDir string `yaml:"config_dir" json:"config_dir"`

	// Listen is the HTTP listen address of the status API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone schedules are evaluated in. Empty means the
	// system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Tick is the cron spec of the polling loop.
	Tick string `yaml:"tick" json:"tick"`

	// Notifier selects the alert backend: auto, macos, linux or log.
	Notifier string `yaml:"notifier" json:"notifier"`

	Log LogConfig `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultPath is $XDG_CONFIG_HOME/reminder/reminderd.yaml, falling back to
// ~/.config.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "reminder", "reminderd.yaml")
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "config"
	}
	return filepath.Join(base, "reminder")
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		ConfigDir: defaultConfigDir(),
		Listen:    "127.0.0.1:8089",
		Tick:      "* * * * *",
		Notifier:  "auto",
		Log:       LogConfig{Level: "info", Format: "console"},
	}
}

// Normalize fills in missing values so partially written files still work.
func (c *Config) Normalize() {
	if c.ConfigDir == "" {
		c.ConfigDir = defaultConfigDir()
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8089"
	}
	if c.Tick == "" {
		c.Tick = "* * * * *"
	}
	if c.Notifier == "" {
		c.Notifier = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format != "json" {
		c.Log.Format = "console"
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Tick); err != nil {
		return fmt.Errorf("tick %q: %w", c.Tick, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Notifier {
	case "auto", "macos", "linux", "log":
	default:
		return fmt.Errorf("notifier %q: want auto, macos, linux or log", c.Notifier)
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New("basic_auth.username is empty")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ScheduleDir returns the TOML directory with the REMINDER_CONFIG_DIR
// override, ~ and $VARS applied.
func (c *Config) ScheduleDir() string {
	dir := c.ConfigDir
	if env := os.Getenv(EnvConfigDir); env != "" {
		dir = env
	}
	return ExpandPath(dir)
}

// ExpandPath expands $VARS and a leading ~.
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether an unwritable default is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return jsonfile.WriteAtomic(path, data, 0o600)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
