package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// Construction modes accepted by the construct key.
const (
	ConstructWorker = "worker"
	ConstructInline = "inline"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	defaultSkipStep     = 60 * time.Second
)

type Config struct {
	DefaultFolder string        `koanf:"default_folder"`
	PollInterval  time.Duration `koanf:"poll_interval"` // e.g. "250ms"
	SkipStep      time.Duration `koanf:"skip_step"`     // rewind/forward step, e.g. "60s"

	// GStreamer element factories for the sinks; empty keeps playbin's choice
	VideoSink string `koanf:"video_sink"`
	AudioSink string `koanf:"audio_sink"`

	Construct      string `koanf:"construct"`        // "worker" or "inline"
	GstLibraryPath string `koanf:"gst_library_path"` // directory searched before system paths

	LogLevel string `koanf:"log_level"`

	Notifications *bool `koanf:"notifications"` // desktop notifications (default: true)
	MPRIS         *bool `koanf:"mpris"`         // MPRIS D-Bus service (default: true)
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order; later files win. Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		DefaultFolder: "", // empty means use cwd
		Construct:     ConstructWorker,
		LogLevel:      "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultFolder != "" {
		cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	}
	if cfg.GstLibraryPath != "" {
		cfg.GstLibraryPath = expandPath(cfg.GstLibraryPath)
	}
	cfg.Construct = strings.ToLower(strings.TrimSpace(cfg.Construct))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Construct {
	case ConstructWorker, ConstructInline:
	default:
		return fmt.Errorf("construct: want %q or %q, got %q", ConstructWorker, ConstructInline, c.Construct)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/playbin/config.toml
		filepath.Join(xdg.ConfigHome, "playbin", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPollInterval returns the status poll interval with its default applied.
func (c *Config) GetPollInterval() time.Duration {
	if c.PollInterval < 10*time.Millisecond {
		return defaultPollInterval
	}
	return c.PollInterval
}

// GetSkipStep returns the rewind/forward step with its default applied.
func (c *Config) GetSkipStep() time.Duration {
	if c.SkipStep <= 0 {
		return defaultSkipStep
	}
	return c.SkipStep
}

// GetLogLevel returns the configured level, info when unset.
func (c *Config) GetLogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// InlineConstruction reports whether pipelines are built on the caller.
func (c *Config) InlineConstruction() bool {
	return c.Construct == ConstructInline
}

// NotificationsEnabled returns true unless notifications are turned off.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// MPRISEnabled returns true unless the MPRIS service is turned off.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}
