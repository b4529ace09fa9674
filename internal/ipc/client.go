package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"

	"vyshim/internal/logging"
)

const (
	endpointScheme = "ipc://"
	dialAttempts   = 10
)

var (
	// ErrBusy is returned when a request is issued while another is pending.
	ErrBusy = errors.New("request already in flight")
	// ErrClosed is returned once the channel has been closed.
	ErrClosed = errors.New("channel closed")
)

// Options tune a Channel.
type Options struct {
	// DialTimeout bounds connection establishment, retries included.
	DialTimeout time.Duration
	// ReceiveTimeout bounds each request's wait for its reply. Zero waits forever.
	ReceiveTimeout time.Duration
	Logger         *slog.Logger
}

// Channel is a request/reply connection to the daemon.
type Channel struct {
	endpoint string
	opts     Options
	logger   *slog.Logger
	sock     zmq4.Socket

	mu      sync.Mutex
	pending bool
	broken  error
	closed  bool
}

// Dial connects a REQ socket to endpoint.
func Dial(ctx context.Context, endpoint string, opts Options) (*Channel, error) {
	if !strings.HasPrefix(endpoint, endpointScheme) || len(endpoint) == len(endpointScheme) {
		return nil, fmt.Errorf("dial %s: endpoint must be %s<path>", endpoint, endpointScheme)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 2 * time.Second
	}
	logger := logging.NewComponentLogger(opts.Logger, "ipc")

	retry := opts.DialTimeout / dialAttempts
	if retry <= 0 {
		retry = time.Millisecond
	}
	sock := zmq4.NewReq(context.Background(),
		zmq4.WithDialerTimeout(opts.DialTimeout),
		zmq4.WithDialerRetry(retry),
		zmq4.WithLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)),
	)

	logger.Debug("connecting to daemon", logging.String("endpoint", endpoint))
	dialed := make(chan error, 1)
	go func() { dialed <- sock.Dial(endpoint) }()
	select {
	case err := <-dialed:
		if err != nil {
			_ = sock.Close()
			return nil, fmt.Errorf("dial %s: %w", endpoint, err)
		}
	case <-ctx.Done():
		_ = sock.Close()
		return nil, fmt.Errorf("dial %s: %w", endpoint, ctx.Err())
	}

	return &Channel{endpoint: endpoint, opts: opts, logger: logger, sock: sock}, nil
}

// Endpoint returns the address the channel is connected to.
func (c *Channel) Endpoint() string {
	return c.endpoint
}

// Request sends payload as one message and waits for the reply's first frame.
// A failed or abandoned exchange leaves the channel unusable.
func (c *Channel) Request(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	if c.opts.ReceiveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ReceiveTimeout)
		defer cancel()
	}

	type result struct {
		reply []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		if err := c.sock.Send(zmq4.NewMsg(payload)); err != nil {
			done <- result{err: fmt.Errorf("send: %w", err)}
			return
		}
		msg, err := c.sock.Recv()
		if err != nil {
			done <- result{err: fmt.Errorf("receive: %w", err)}
			return
		}
		var reply []byte
		if len(msg.Frames) > 0 {
			reply = msg.Frames[0]
		}
		done <- result{reply: reply}
	}()

	select {
	case res := <-done:
		c.release(res.err)
		return res.reply, res.err
	case <-ctx.Done():
		err := fmt.Errorf("receive: %w", ctx.Err())
		c.release(err)
		// Unblocks the pending Recv.
		_ = c.Close()
		return nil, err
	}
}

func (c *Channel) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrClosed
	case c.broken != nil:
		return fmt.Errorf("channel unusable after earlier failure: %w", c.broken)
	case c.pending:
		return ErrBusy
	}
	c.pending = true
	return nil
}

func (c *Channel) release(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err != nil && c.broken == nil {
		c.broken = err
	}
}

// Close releases the socket. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.logger.Debug("closing daemon channel", logging.String("endpoint", c.endpoint))
	return c.sock.Close()
}
