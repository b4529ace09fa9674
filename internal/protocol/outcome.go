package protocol

import "fmt"

// Exit statuses reported to the configuration front end.
const (
	ExitSuccess  = 0
	ExitRejected = 1
	ExitChannel  = 2
	ExitProcess  = 3
	ExitSetup    = 4
)

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// OutcomeExit ends the invocation with Code.
	OutcomeExit OutcomeKind = iota
	// OutcomeReplace hands the node to the script at Path.
	OutcomeReplace
)

// Outcome is the result of one invocation's exchange with the daemon.
type Outcome struct {
	Kind OutcomeKind
	Code int
	// Env is the environment assignment to apply before running Path.
	Env  string
	Path string

	Status      Status
	Descriptor  string
	Initialized bool
}

// Label is a short name for logs and the journal.
func (o Outcome) Label() string {
	switch {
	case o.Kind == OutcomeReplace:
		return "pass"
	case o.Code == ExitSuccess:
		return "success"
	case o.Code == ExitRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Err reports a daemon rejection as a KindRejected error, nil otherwise.
func (o Outcome) Err() error {
	if o.Kind == OutcomeExit && o.Status.IsError() {
		return NewError(KindRejected, "node update", fmt.Errorf("daemon replied %s", o.Status))
	}
	return nil
}

func outcomeFor(status Status, trailing []string) Outcome {
	out := Outcome{Status: status}
	switch {
	case status.IsPass():
		out.Kind = OutcomeReplace
		out.Path = trailing[len(trailing)-1]
		if len(trailing) > 1 {
			out.Env = trailing[len(trailing)-2]
		}
	case status.IsError():
		out.Kind = OutcomeExit
		out.Code = ExitRejected
	default:
		out.Kind = OutcomeExit
		out.Code = ExitSuccess
	}
	return out
}
