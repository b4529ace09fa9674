package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment overrides applied after the file is read.
const (
	EnvEndpoint = "VYSHIM_ENDPOINT"
	EnvDebug    = "VYSHIM_DEBUG"
)

const endpointScheme = "ipc://"

func (c *Config) normalize() error {
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizeSession(); err != nil {
		return err
	}
	c.normalizeSnapshot()
	c.normalizePassThrough()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeJournal()
}

func (c *Config) normalizeDaemon() error {
	if value, ok := os.LookupEnv(EnvEndpoint); ok && strings.TrimSpace(value) != "" {
		c.Daemon.Endpoint = value
	}
	c.Daemon.Endpoint = strings.TrimSpace(c.Daemon.Endpoint)
	if c.Daemon.Endpoint == "" {
		c.Daemon.Endpoint = defaultEndpoint
	}
	if !strings.HasPrefix(c.Daemon.Endpoint, endpointScheme) {
		return nil
	}
	socket, err := expandPath(strings.TrimPrefix(c.Daemon.Endpoint, endpointScheme))
	if err != nil {
		return fmt.Errorf("daemon.endpoint: %w", err)
	}
	c.Daemon.Endpoint = endpointScheme + socket
	return nil
}

func (c *Config) normalizeSession() error {
	var err error
	if strings.TrimSpace(c.Session.CommitMarker) == "" {
		c.Session.CommitMarker = defaultCommitMarker
	}
	if c.Session.CommitMarker, err = expandPath(strings.TrimSpace(c.Session.CommitMarker)); err != nil {
		return fmt.Errorf("session.commit_marker: %w", err)
	}
	if c.Session.LockPath, err = expandPath(strings.TrimSpace(c.Session.LockPath)); err != nil {
		return fmt.Errorf("session.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSnapshot() {
	c.Snapshot.Shell = strings.TrimSpace(c.Snapshot.Shell)
	if c.Snapshot.Shell == "" {
		c.Snapshot.Shell = defaultShell
	}
	c.Snapshot.ActiveCommand = strings.TrimSpace(c.Snapshot.ActiveCommand)
	c.Snapshot.WorkingCommand = strings.TrimSpace(c.Snapshot.WorkingCommand)
}

func (c *Config) normalizePassThrough() {
	c.PassThrough.Mode = strings.ToLower(strings.TrimSpace(c.PassThrough.Mode))
	if c.PassThrough.Mode == "" {
		c.PassThrough.Mode = defaultPassThroughMode
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if value, ok := os.LookupEnv(EnvDebug); ok && isTruthy(value) {
		c.Logging.Level = "debug"
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
