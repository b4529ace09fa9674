package protocol

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies invocation failures.
type ErrorKind int

const (
	// KindChannel is a connect, send or receive failure on the daemon channel.
	KindChannel ErrorKind = iota + 1
	// KindRejected is an ERROR_COMMIT or ERROR_DAEMON reply.
	KindRejected
	// KindProcess is a failure to start, replace or wait on a process.
	KindProcess
	// KindSnapshot is a configuration dump that could not be produced.
	KindSnapshot
)

func (k ErrorKind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindRejected:
		return "rejected"
	case KindProcess:
		return "process"
	case KindSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Error is a classified invocation failure.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with kind and op.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode maps the error to the process exit status. A channel error caused
// by the receive timeout counts as a daemon error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindChannel:
		if errors.Is(e.Err, context.DeadlineExceeded) {
			return ExitRejected
		}
		return ExitChannel
	case KindRejected:
		return ExitRejected
	case KindProcess:
		return ExitProcess
	default:
		return ExitSetup
	}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}

// ExitCodeFor maps any error to an exit status. Unclassified errors are
// setup failures.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.ExitCode()
	}
	return ExitSetup
}
