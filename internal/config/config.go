package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath names the environment variable that points the shim at a
// configuration file. The shim takes no flags, so this is its only override.
const EnvConfigPath = "VYSHIM_CONFIG"

// Pass-through modes.
const (
	PassThroughExec  = "exec"
	PassThroughSpawn = "spawn"
)

// Daemon contains the channel settings for reaching vyos-configd.
type Daemon struct {
	Endpoint       string `toml:"endpoint"`
	DialTimeout    int    `toml:"dial_timeout"`
	ReceiveTimeout int    `toml:"receive_timeout"` // 0 waits forever
}

// Session contains commit marker settings.
type Session struct {
	CommitMarker string `toml:"commit_marker"`
	LockPath     string `toml:"lock_path"` // empty disables locking
	LockTimeout  int    `toml:"lock_timeout"`
}

// Snapshot contains the commands that dump the active and working configuration.
type Snapshot struct {
	Shell          string `toml:"shell"`
	ActiveCommand  string `toml:"active_command"`
	WorkingCommand string `toml:"working_command"`
	Timeout        int    `toml:"timeout"`
}

// PassThrough selects how a PASS response hands the node back to its script.
type PassThrough struct {
	Mode string `toml:"mode"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Journal contains configuration for the optional invocation journal.
type Journal struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// Config encapsulates all configuration values for vyshim.
//
// Configuration sections by subsystem:
//   - Daemon: vyos-configd endpoint, dial and receive timeouts
//   - Session: commit marker path and its lock
//   - Snapshot: shell commands producing the active and working configs
//   - PassThrough: exec (replace the process) or spawn (fork and wait)
//   - Logging: log format, level, and optional file
//   - Journal: SQLite record of invocations
type Config struct {
	Daemon      Daemon      `toml:"daemon"`
	Session     Session     `toml:"session"`
	Snapshot    Snapshot    `toml:"snapshot"`
	PassThrough PassThrough `toml:"passthrough"`
	Logging     Logging     `toml:"logging"`
	Journal     Journal     `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() string {
	return defaultConfigPath
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When path is empty the
// VYSHIM_CONFIG environment variable is consulted before the default location.
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
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
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
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path == "" {
		path = defaultConfigPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// SocketPath returns the filesystem path behind the ipc:// endpoint.
func (c *Config) SocketPath() string {
	return strings.TrimPrefix(c.Daemon.Endpoint, endpointScheme)
}

// DialTimeout returns the daemon dial timeout.
func (c *Config) DialTimeout() time.Duration {
	return seconds(c.Daemon.DialTimeout)
}

// ReceiveTimeout returns the per-request reply timeout; zero means none.
func (c *Config) ReceiveTimeout() time.Duration {
	return seconds(c.Daemon.ReceiveTimeout)
}

// LockTimeout returns how long marker consumption waits for the session lock.
func (c *Config) LockTimeout() time.Duration {
	return seconds(c.Session.LockTimeout)
}

// SnapshotTimeout returns the per-command snapshot timeout; zero means none.
func (c *Config) SnapshotTimeout() time.Duration {
	return seconds(c.Snapshot.Timeout)
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
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

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
