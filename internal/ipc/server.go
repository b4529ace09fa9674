package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-zeromq/zmq4"

	"vyshim/internal/logging"
)

// Handler produces the reply for one request.
type Handler func(payload []byte) []byte

// Server answers requests on a REP socket, one at a time.
type Server struct {
	endpoint string
	path     string
	handler  Handler
	logger   *slog.Logger
	sock     zmq4.Socket

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewServer binds a REP socket at endpoint, replacing any stale socket file.
func NewServer(ctx context.Context, endpoint string, handler Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires handler")
	}
	path := strings.TrimPrefix(endpoint, endpointScheme)
	if path == endpoint || path == "" {
		return nil, fmt.Errorf("listen %s: endpoint must be %s<path>", endpoint, endpointScheme)
	}
	logger = logging.NewComponentLogger(logger, "ipc-server")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	sock := zmq4.NewRep(serverCtx, zmq4.WithLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)))
	if err := sock.Listen(endpoint); err != nil {
		cancel()
		_ = sock.Close()
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	return &Server{
		endpoint: endpoint,
		path:     path,
		handler:  handler,
		logger:   logger,
		sock:     sock,
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Endpoint returns the bound address.
func (s *Server) Endpoint() string {
	return s.endpoint
}

// Serve answers requests until the server is closed.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("endpoint", s.endpoint))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			msg, err := s.sock.Recv()
			if err != nil {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Warn("receive failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_receive_failed"),
				)
				continue
			}
			var payload []byte
			if len(msg.Frames) > 0 {
				payload = msg.Frames[0]
			}
			reply := s.handler(payload)
			if err := s.sock.Send(zmq4.NewMsg(reply)); err != nil {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Warn("send failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_send_failed"),
				)
			}
		}
	}()
}

// Close stops serving and removes the socket file.
func (s *Server) Close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.sock.Close()
		s.wg.Wait()
		_ = os.Remove(s.path)
	})
}
