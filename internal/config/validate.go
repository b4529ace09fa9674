package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSnapshot(); err != nil {
		return err
	}
	if err := c.validatePassThrough(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateJournal()
}

func (c *Config) validateDaemon() error {
	if !strings.HasPrefix(c.Daemon.Endpoint, endpointScheme) {
		return fmt.Errorf("daemon.endpoint must be an %s<path> address, got %q", endpointScheme, c.Daemon.Endpoint)
	}
	if strings.TrimPrefix(c.Daemon.Endpoint, endpointScheme) == "" {
		return errors.New("daemon.endpoint must include a socket path")
	}
	if c.Daemon.DialTimeout <= 0 {
		return errors.New("daemon.dial_timeout must be positive (seconds)")
	}
	if c.Daemon.ReceiveTimeout < 0 {
		return errors.New("daemon.receive_timeout must not be negative (0 disables the timeout)")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.LockPath != "" && c.Session.LockPath == c.Session.CommitMarker {
		return errors.New("session.lock_path must differ from session.commit_marker")
	}
	if c.Session.LockTimeout < 0 {
		return errors.New("session.lock_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if c.Snapshot.ActiveCommand == "" {
		return errors.New("snapshot.active_command must be set")
	}
	if c.Snapshot.WorkingCommand == "" {
		return errors.New("snapshot.working_command must be set")
	}
	if c.Snapshot.Timeout < 0 {
		return errors.New("snapshot.timeout must not be negative (0 disables the timeout)")
	}
	return nil
}

func (c *Config) validatePassThrough() error {
	switch c.PassThrough.Mode {
	case PassThroughExec, PassThroughSpawn:
		return nil
	default:
		return fmt.Errorf("passthrough.mode: unsupported value %q (want %q or %q)", c.PassThrough.Mode, PassThroughExec, PassThroughSpawn)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if c.Journal.MaxEntries < 0 {
		return errors.New("journal.max_entries must not be negative (0 keeps every entry)")
	}
	return nil
}
