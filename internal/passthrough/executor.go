package passthrough

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"vyshim/internal/logging"
	"vyshim/internal/protocol"
)

// ExecFunc replaces the current process image. It returns only on failure.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Executor starts pass-through targets and helper commands.
type Executor struct {
	logger   *slog.Logger
	execFunc ExecFunc
	environ  func() []string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// Option customizes an Executor.
type Option func(*Executor)

// WithExecFunc overrides the process replacement primitive.
func WithExecFunc(fn ExecFunc) Option {
	return func(e *Executor) { e.execFunc = fn }
}

// WithEnviron overrides the base environment.
func WithEnviron(fn func() []string) Option {
	return func(e *Executor) { e.environ = fn }
}

// WithStdio overrides the streams handed to spawned children.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New returns an Executor using unix.Exec and the process environment.
func New(logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger:   logging.NewComponentLogger(logger, "passthrough"),
		execFunc: unix.Exec,
		environ:  os.Environ,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseAssignment splits a KEY=VALUE environment assignment.
func ParseAssignment(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return key, value, true
}

// Environment returns the base environment with assignment applied.
func (e *Executor) Environment(assignment string) []string {
	base := e.environ()
	if assignment == "" {
		return base
	}
	key, _, ok := ParseAssignment(assignment)
	if !ok {
		logging.WarnWithContext(e.logger, "ignoring malformed environment assignment", "env_assignment_invalid",
			logging.String("assignment", assignment),
			logging.String(logging.FieldImpact, "script runs without the assignment"),
		)
		return base
	}
	env := make([]string, 0, len(base)+1)
	prefix := key + "="
	for _, kv := range base {
		if !strings.HasPrefix(kv, prefix) {
			env = append(env, kv)
		}
	}
	return append(env, assignment)
}

// Replace execs path with argv [basename(path)]. It returns only on failure.
func (e *Executor) Replace(assignment, path string) error {
	argv := []string{filepath.Base(path)}
	env := e.Environment(assignment)
	e.logger.Debug("replacing process with node script", logging.String("path", path))

	err := e.execFunc(path, argv, env)
	if err == nil {
		err = errors.New("exec returned without replacing the process")
	}
	return protocol.NewError(protocol.KindProcess, "exec "+path, err)
}

// Spawn runs path as a child with argv [basename(path)], waits, and returns
// its exit status. Death by signal maps to 128+signal.
func (e *Executor) Spawn(ctx context.Context, assignment, path string) (int, error) {
	cmd := exec.CommandContext(ctx, path)
	cmd.Args = []string{filepath.Base(path)}
	cmd.Env = e.Environment(assignment)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	e.logger.Debug("spawning node script", logging.String("path", path))
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitStatus(exitErr)
		e.logger.Debug("node script exited", logging.String("path", path), logging.Int("exit_code", code))
		return code, nil
	}
	return protocol.ExitProcess, protocol.NewError(protocol.KindProcess, "spawn "+path, err)
}

// RunChild runs command through shell -c and returns its standard output.
// A non-zero exit is logged but not treated as an error.
func (e *Executor) RunChild(ctx context.Context, shell, command string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = e.environ()
	cmd.Stdout = &out
	cmd.Stderr = e.stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, protocol.NewError(protocol.KindProcess, fmt.Sprintf("run %q", command), err)
		}
		e.logger.Debug("child command exited non-zero",
			logging.String("command", command),
			logging.Int("exit_code", exitStatus(exitErr)),
		)
	}
	return out.Bytes(), nil
}

func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
