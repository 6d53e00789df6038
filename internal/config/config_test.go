package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/videos",
			expected: filepath.Join(home, "videos"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/srv/media",
			expected: "/srv/media",
		},
		{
			name:     "relative path unchanged",
			input:    "media/films",
			expected: "media/films",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}

	expectedFirst := filepath.Join(xdg.ConfigHome, "playbin", "config.toml")
	if paths[0] != expectedFirst {
		t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
	}

	// Last path should be local config.toml
	if paths[1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "config.toml")
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Construct != ConstructWorker {
		t.Errorf("Construct = %q, want %q", cfg.Construct, ConstructWorker)
	}
	if cfg.InlineConstruction() {
		t.Error("InlineConstruction() = true, want false")
	}
	if cfg.GetPollInterval() != 250*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 250ms", cfg.GetPollInterval())
	}
	if cfg.GetSkipStep() != 60*time.Second {
		t.Errorf("GetSkipStep() = %v, want 60s", cfg.GetSkipStep())
	}
	if cfg.GetLogLevel() != logrus.InfoLevel {
		t.Errorf("GetLogLevel() = %v, want info", cfg.GetLogLevel())
	}
	if !cfg.NotificationsEnabled() || !cfg.MPRISEnabled() {
		t.Error("notifications and mpris should default to enabled")
	}
}

func TestLoadFrom_ReadsKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.toml", `
default_folder = "/srv/media"
poll_interval = "100ms"
skip_step = "10s"
video_sink = "glimagesink"
audio_sink = "pulsesink"
construct = "Inline"
log_level = "debug"
notifications = false
mpris = false
gst_library_path = "/opt/gstreamer/lib"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.DefaultFolder != "/srv/media" {
		t.Errorf("DefaultFolder = %q", cfg.DefaultFolder)
	}
	if cfg.GetPollInterval() != 100*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 100ms", cfg.GetPollInterval())
	}
	if cfg.GetSkipStep() != 10*time.Second {
		t.Errorf("GetSkipStep() = %v, want 10s", cfg.GetSkipStep())
	}
	if cfg.VideoSink != "glimagesink" || cfg.AudioSink != "pulsesink" {
		t.Errorf("sinks = %q, %q", cfg.VideoSink, cfg.AudioSink)
	}
	if !cfg.InlineConstruction() {
		t.Errorf("construct %q should be inline", cfg.Construct)
	}
	if cfg.GetLogLevel() != logrus.DebugLevel {
		t.Errorf("GetLogLevel() = %v, want debug", cfg.GetLogLevel())
	}
	if cfg.NotificationsEnabled() || cfg.MPRISEnabled() {
		t.Error("notifications and mpris should be disabled")
	}
	if cfg.GstLibraryPath != "/opt/gstreamer/lib" {
		t.Errorf("GstLibraryPath = %q", cfg.GstLibraryPath)
	}
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", "skip_step = \"30s\"\nvideo_sink = \"xvimagesink\"\n")
	local := writeConfig(t, dir, "local.toml", "skip_step = \"5s\"\n")

	cfg, err := LoadFrom(user, local)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.GetSkipStep() != 5*time.Second {
		t.Errorf("GetSkipStep() = %v, want 5s", cfg.GetSkipStep())
	}
	if cfg.VideoSink != "xvimagesink" {
		t.Errorf("VideoSink = %q, want value from first file", cfg.VideoSink)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown construct mode",
			content: `construct = "deferred"`,
			wantErr: "construct",
		},
		{
			name:    "unknown log level",
			content: `log_level = "loud"`,
			wantErr: "log_level",
		},
		{
			name:    "malformed toml",
			content: `skip_step = `,
			wantErr: "load",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.toml", tt.content)
			_, err := LoadFrom(path)
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetPollInterval_TooSmall(t *testing.T) {
	cfg := Config{PollInterval: time.Millisecond}
	if cfg.GetPollInterval() != 250*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want default", cfg.GetPollInterval())
	}
}
