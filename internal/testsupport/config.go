package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vyshim/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose socket, marker and journal live in a
// per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Daemon.Endpoint = "ipc://" + filepath.Join(base, "configd.sock")
	cfgVal.Daemon.DialTimeout = 2
	cfgVal.Session.CommitMarker = filepath.Join(base, "initial_in_commit")
	cfgVal.Session.LockPath = cfgVal.Session.CommitMarker + ".lock"
	cfgVal.Session.LockTimeout = 1
	cfgVal.Journal.Path = filepath.Join(base, "journal", "journal.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithJournal enables the invocation journal.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithPassThroughMode sets the pass-through mode.
func WithPassThroughMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.PassThrough.Mode = mode
	}
}

// WithSnapshotCommands replaces the configuration dump commands.
func WithSnapshotCommands(active, working string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Snapshot.ActiveCommand = active
		b.cfg.Snapshot.WorkingCommand = working
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, cli-shell-api is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"cli-shell-api"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "exit 0")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Session.CommitMarker)
}

// WriteConfig encodes cfg to a TOML file under BaseDir and returns its path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
