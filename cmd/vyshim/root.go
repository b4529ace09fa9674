package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vyshim/internal/ipc"
	"vyshim/internal/passthrough"
	"vyshim/internal/protocol"
)

// channel is the daemon connection as the invocation uses it.
type channel interface {
	protocol.Channel
	Close() error
}

// environment holds the process-level collaborators an invocation uses.
type environment struct {
	stderr      io.Writer
	dial        func(ctx context.Context, endpoint string, opts ipc.Options) (channel, error)
	execOptions []passthrough.Option
	newID       func() string
	now         func() time.Time
}

func defaultEnvironment() environment {
	return environment{
		stderr: os.Stderr,
		dial: func(ctx context.Context, endpoint string, opts ipc.Options) (channel, error) {
			ch, err := ipc.Dial(ctx, endpoint, opts)
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// exitStatus carries an exit code that needs no further reporting.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitStatus) ExitCode() int {
	return e.code
}

func newRootCommand(env environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "vyshim [ENV_ASSIGNMENT] [TAG_VALUE] SCRIPT",
		Short:              "Forward a configuration node to vyos-configd",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd.Context(), env, args)
		},
	}
	return cmd
}

// execute runs one invocation and returns its exit status.
func execute(ctx context.Context, args []string, env environment) int {
	// cobra reads os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(env)
	cmd.SetArgs(args)
	cmd.SetOut(env.stderr)
	cmd.SetErr(env.stderr)
	return exitCode(env.stderr, cmd.ExecuteContext(ctx))
}

// exitCode maps err to a status. Classified errors were already logged;
// anything else is printed here.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return protocol.ExitSuccess
	}
	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}
	if protocol.KindOf(err) == 0 {
		fmt.Fprintf(stderr, "vyshim: %v\n", err)
	}
	return protocol.ExitCodeFor(err)
}
