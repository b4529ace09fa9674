// Package snapshot dumps the active and working configuration through
// cli-shell-api for the init handshake.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vyshim/internal/config"
	"vyshim/internal/logging"
)

// ErrEmpty is returned when a dump command produced no output.
var ErrEmpty = errors.New("configuration dump produced no output")

// Runner executes a shell command line and returns its standard output.
type Runner interface {
	RunChild(ctx context.Context, shell, command string) ([]byte, error)
}

// Shell is a configuration source backed by two shell commands.
type Shell struct {
	runner  Runner
	shell   string
	active  string
	working string
	timeout time.Duration
	logger  *slog.Logger
}

// NewShell builds a Shell. A zero timeout lets the commands run unbounded.
func NewShell(runner Runner, shell, activeCommand, workingCommand string, timeout time.Duration, logger *slog.Logger) *Shell {
	return &Shell{
		runner:  runner,
		shell:   shell,
		active:  activeCommand,
		working: workingCommand,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "snapshot"),
	}
}

// FromConfig builds the Shell described by cfg.
func FromConfig(cfg *config.Config, runner Runner, logger *slog.Logger) *Shell {
	return NewShell(runner, cfg.Snapshot.Shell, cfg.Snapshot.ActiveCommand, cfg.Snapshot.WorkingCommand, cfg.SnapshotTimeout(), logger)
}

// Active returns the running configuration.
func (s *Shell) Active(ctx context.Context) ([]byte, error) {
	return s.dump(ctx, "active", s.active)
}

// Working returns the configuration being committed.
func (s *Shell) Working(ctx context.Context) ([]byte, error) {
	return s.dump(ctx, "working", s.working)
}

func (s *Shell) dump(ctx context.Context, name, command string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.runner.RunChild(ctx, s.shell, command)
	if err != nil {
		return nil, fmt.Errorf("%s configuration: %w", name, err)
	}
	out = CutAtNUL(out)
	s.logger.Debug("configuration dumped",
		logging.String("snapshot", name),
		logging.Int("bytes", len(out)),
		logging.Duration("elapsed", time.Since(start)),
	)
	if len(out) == 0 {
		return nil, fmt.Errorf("%s configuration: %w", name, ErrEmpty)
	}
	return out, nil
}

// CutAtNUL returns data up to, not including, its first NUL byte.
func CutAtNUL(data []byte) []byte {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return data[:i]
	}
	return data
}
