package config

const (
	defaultConfigPath      = "/etc/vyshim/config.toml"
	defaultEndpoint        = "ipc:///run/vyos-configd.sock"
	defaultDialTimeout     = 2
	defaultReceiveTimeout  = 0
	defaultCommitMarker    = "/var/tmp/initial_in_commit"
	defaultLockSuffix      = ".lock"
	defaultLockTimeout     = 5
	defaultShell           = "/bin/sh"
	defaultActiveCommand   = "cli-shell-api --show-active-only --show-show-defaults --show-ignore-edit showConfig"
	defaultWorkingCommand  = "cli-shell-api --show-working-only --show-show-defaults --show-ignore-edit showConfig"
	defaultSnapshotTimeout = 0
	defaultPassThroughMode = PassThroughExec
	defaultLogFormat       = "console"
	defaultLogLevel        = "warn"
	defaultJournalPath     = "/var/lib/vyshim/journal.db"
	defaultJournalMax      = 5000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			Endpoint:       defaultEndpoint,
			DialTimeout:    defaultDialTimeout,
			ReceiveTimeout: defaultReceiveTimeout,
		},
		Session: Session{
			CommitMarker: defaultCommitMarker,
			LockPath:     defaultCommitMarker + defaultLockSuffix,
			LockTimeout:  defaultLockTimeout,
		},
		Snapshot: Snapshot{
			Shell:          defaultShell,
			ActiveCommand:  defaultActiveCommand,
			WorkingCommand: defaultWorkingCommand,
			Timeout:        defaultSnapshotTimeout,
		},
		PassThrough: PassThrough{
			Mode: defaultPassThroughMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled:    false,
			Path:       defaultJournalPath,
			MaxEntries: defaultJournalMax,
		},
	}
}
