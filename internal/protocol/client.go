package protocol

import (
	"context"
	"errors"
	"log/slog"

	"vyshim/internal/logging"
)

// ErrNoArguments is returned when an invocation names no node.
var ErrNoArguments = errors.New("no node arguments")

// Channel sends one request and blocks for its reply.
type Channel interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
}

// SessionState reports, at most once per commit session, that a new session
// has started.
type SessionState interface {
	CheckAndConsume() bool
}

// SnapshotSource produces the configuration blobs sent during the handshake.
type SnapshotSource interface {
	Active(ctx context.Context) ([]byte, error)
	Working(ctx context.Context) ([]byte, error)
}

// Client drives the exchange with the daemon for one invocation.
type Client struct {
	channel   Channel
	session   SessionState
	snapshots SnapshotSource
	logger    *slog.Logger
}

// NewClient wires a client. session and snapshots may be nil when the caller
// never initializes.
func NewClient(channel Channel, session SessionState, snapshots SnapshotSource, logger *slog.Logger) *Client {
	return &Client{
		channel:   channel,
		session:   session,
		snapshots: snapshots,
		logger:    logging.NewComponentLogger(logger, "protocol"),
	}
}

// Run consumes the session marker, initializes when it was present, and sends
// the node update built from args.
func (c *Client) Run(ctx context.Context, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{Kind: OutcomeExit, Code: ExitSetup}, ErrNoArguments
	}

	initialized := false
	if c.session != nil && c.session.CheckAndConsume() {
		initialized = true
		if err := c.Initialize(ctx); err != nil {
			return Outcome{Kind: OutcomeExit, Code: ExitCodeFor(err), Initialized: true}, err
		}
	}

	out, err := c.UpdateNode(ctx, TrailingArgs(args))
	out.Initialized = initialized
	return out, err
}

// Initialize performs the three-step handshake. Replies are awaited but not
// interpreted. Snapshot failures degrade to an empty blob.
func (c *Client) Initialize(ctx context.Context) error {
	payload, err := Encode(InitEnvelope())
	if err != nil {
		return err
	}
	c.logger.Debug("sending init announcement")
	if _, err := c.channel.Request(ctx, payload); err != nil {
		return NewError(KindChannel, "send init", err)
	}
	c.logger.Debug("received init receipt")

	if err := c.sendSnapshot(ctx, "active", c.activeSnapshot); err != nil {
		return err
	}
	return c.sendSnapshot(ctx, "working", c.workingSnapshot)
}

func (c *Client) activeSnapshot(ctx context.Context) ([]byte, error) {
	if c.snapshots == nil {
		return nil, errors.New("no snapshot source")
	}
	return c.snapshots.Active(ctx)
}

func (c *Client) workingSnapshot(ctx context.Context) ([]byte, error) {
	if c.snapshots == nil {
		return nil, errors.New("no snapshot source")
	}
	return c.snapshots.Working(ctx)
}

func (c *Client) sendSnapshot(ctx context.Context, name string, fetch func(context.Context) ([]byte, error)) error {
	blob, err := fetch(ctx)
	if err != nil {
		logging.WarnWithContext(c.logger, "configuration snapshot unavailable", "snapshot_failed",
			logging.String("snapshot", name),
			logging.Error(NewError(KindSnapshot, name+" snapshot", err)),
			logging.String(logging.FieldImpact, "daemon receives an empty configuration"),
			logging.String(logging.FieldErrorHint, "run cli-shell-api showConfig manually"),
		)
		blob = nil
	}
	if len(blob) == 0 {
		blob = []byte{}
	}
	c.logger.Debug("sending configuration snapshot", logging.String("snapshot", name), logging.Int("bytes", len(blob)))
	if _, err := c.channel.Request(ctx, blob); err != nil {
		return NewError(KindChannel, "send "+name+" snapshot", err)
	}
	c.logger.Debug("received snapshot receipt", logging.String("snapshot", name))
	return nil
}

// UpdateNode sends the node envelope for trailing and interprets the reply.
func (c *Client) UpdateNode(ctx context.Context, trailing []string) (Outcome, error) {
	if len(trailing) == 0 {
		return Outcome{Kind: OutcomeExit, Code: ExitSetup}, ErrNoArguments
	}
	descriptor := BuildDescriptor(trailing)
	payload, err := Encode(NodeEnvelope(descriptor))
	if err != nil {
		return Outcome{Kind: OutcomeExit, Code: ExitSetup, Descriptor: descriptor}, err
	}

	c.logger.Debug("sending node data", logging.String("node", descriptor))
	reply, err := c.channel.Request(ctx, payload)
	if err != nil {
		perr := NewError(KindChannel, "node update", err)
		return Outcome{Kind: OutcomeExit, Code: perr.ExitCode(), Status: StatusErrorDaemon, Descriptor: descriptor}, perr
	}

	status, err := ParseStatus(reply)
	if err != nil {
		logging.WarnWithContext(c.logger, "daemon reply carried no status", "empty_reply",
			logging.String("node", descriptor),
			logging.String(logging.FieldImpact, "treated as ERROR_DAEMON"),
		)
	}
	out := outcomeFor(status, trailing)
	out.Descriptor = descriptor
	c.logger.Debug("received node status", logging.String("status", status.String()), logging.String("outcome", out.Label()))
	return out, nil
}
