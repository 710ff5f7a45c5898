// Package config loads summd's daemon configuration from config.toml,
// falling back to documented defaults for anything absent or missing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DaemonConfig is resolved once at summd startup.
type DaemonConfig struct {
	SessionsDir            string `toml:"sessions_dir,omitempty"`
	LogsDir                string `toml:"logs_dir,omitempty"`
	SocketPath             string `toml:"socket_path,omitempty"`
	CleanupRetentionHours  uint64 `toml:"cleanup_retention_hours,omitempty"`
	MultiplexerPrefix      string `toml:"multiplexer_prefix,omitempty"`

	LogLevel        string `toml:"log_level,omitempty"`
	LogFile         string `toml:"log_file,omitempty"`
	MetricsEndpoint string `toml:"metrics_endpoint,omitempty"`
	RequestTimeout  string `toml:"request_timeout,omitempty"`
	MuxTimeout      string `toml:"mux_timeout,omitempty"`
	MonitorInterval string `toml:"monitor_interval,omitempty"`
}

// BaseDir is the daemon's top-level state directory, ~/.summ-daemon.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".summ-daemon"), nil
}

// Load reads <base>/config.toml if present and fills in defaults for
// anything left unset. A missing config file is not an error; summd
// always has a usable configuration.
func Load(base string) (*DaemonConfig, error) {
	cfg := defaults(base)

	path := filepath.Join(base, "config.toml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	var loaded DaemonConfig
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	mergeNonEmpty(cfg, &loaded)
	return cfg, nil
}

func defaults(base string) *DaemonConfig {
	return &DaemonConfig{
		SessionsDir:           filepath.Join(base, "sessions"),
		LogsDir:               filepath.Join(base, "logs"),
		SocketPath:            filepath.Join(base, "daemon.sock"),
		CleanupRetentionHours: 24,
		MultiplexerPrefix:     "summ-",
		LogLevel:              "info",
		LogFile:               filepath.Join(base, "logs", "summd.log"),
		RequestTimeout:        "30s",
		MuxTimeout:            "5s",
		MonitorInterval:       "5s",
	}
}

// mergeNonEmpty overlays every non-zero field of loaded onto cfg,
// leaving defaults in place for anything the file didn't set.
func mergeNonEmpty(cfg, loaded *DaemonConfig) {
	if loaded.SessionsDir != "" {
		cfg.SessionsDir = loaded.SessionsDir
	}
	if loaded.LogsDir != "" {
		cfg.LogsDir = loaded.LogsDir
	}
	if loaded.SocketPath != "" {
		cfg.SocketPath = loaded.SocketPath
	}
	if loaded.CleanupRetentionHours != 0 {
		cfg.CleanupRetentionHours = loaded.CleanupRetentionHours
	}
	if loaded.MultiplexerPrefix != "" {
		cfg.MultiplexerPrefix = loaded.MultiplexerPrefix
	}
	if loaded.LogLevel != "" {
		cfg.LogLevel = loaded.LogLevel
	}
	if loaded.LogFile != "" {
		cfg.LogFile = loaded.LogFile
	}
	if loaded.MetricsEndpoint != "" {
		cfg.MetricsEndpoint = loaded.MetricsEndpoint
	}
	if loaded.RequestTimeout != "" {
		cfg.RequestTimeout = loaded.RequestTimeout
	}
	if loaded.MuxTimeout != "" {
		cfg.MuxTimeout = loaded.MuxTimeout
	}
	if loaded.MonitorInterval != "" {
		cfg.MonitorInterval = loaded.MonitorInterval
	}
}

// RequestTimeoutDuration parses RequestTimeout, falling back to 30s.
func (d *DaemonConfig) RequestTimeoutDuration() time.Duration {
	return parseOr(d.RequestTimeout, 30*time.Second)
}

// MuxTimeoutDuration parses MuxTimeout, falling back to 5s.
func (d *DaemonConfig) MuxTimeoutDuration() time.Duration {
	return parseOr(d.MuxTimeout, 5*time.Second)
}

// MonitorIntervalDuration parses MonitorInterval, falling back to 5s.
func (d *DaemonConfig) MonitorIntervalDuration() time.Duration {
	return parseOr(d.MonitorInterval, 5*time.Second)
}

func parseOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return dur
}

// SessionMetaPath returns the path to a session's meta.json.
func (d *DaemonConfig) SessionMetaPath(sessionID string) string {
	return filepath.Join(d.SessionsDir, sessionID, "meta.json")
}

// SessionStatusPath returns the path to a session's hook-written status.json.
func (d *DaemonConfig) SessionStatusPath(sessionID string) string {
	return filepath.Join(d.SessionRuntimeDir(sessionID), "status.json")
}

// SessionRuntimeDir returns the directory the hook script writes
// status.json into, the parent of SessionStatusPath.
func (d *DaemonConfig) SessionRuntimeDir(sessionID string) string {
	return filepath.Join(d.SessionsDir, sessionID, "runtime")
}

// SessionWorkspacePath returns the path to a session's workspace directory.
func (d *DaemonConfig) SessionWorkspacePath(sessionID string) string {
	return filepath.Join(d.SessionsDir, sessionID, "workspace")
}

// SessionRuntimePath returns the path to a session's own directory, the
// one holding meta.json, workspace/, and runtime/.
func (d *DaemonConfig) SessionRuntimePath(sessionID string) string {
	return filepath.Join(d.SessionsDir, sessionID)
}

// HookScriptPath returns the path to the installed hook script.
func (d *DaemonConfig) HookScriptPath(base string) string {
	return filepath.Join(base, "bin", "summ-hook")
}
