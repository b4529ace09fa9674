package testsupport

import (
	"context"
	"strings"
	"sync"
	"testing"

	"vyshim/internal/ipc"
	"vyshim/internal/logging"
	"vyshim/internal/protocol"
)

// FakeDaemon stands in for vyos-configd on a real REP socket. It records
// every request and answers node envelopes with a configurable status.
type FakeDaemon struct {
	Endpoint string

	mu       sync.Mutex
	messages [][]byte
	status   protocol.Status
}

// StartDaemon serves a FakeDaemon at the endpoint configured for cfg-style
// tests and stops it on cleanup.
func StartDaemon(t testing.TB, endpoint string, status protocol.Status) *FakeDaemon {
	t.Helper()

	d := &FakeDaemon{Endpoint: endpoint, status: status}
	srv, err := ipc.NewServer(context.Background(), endpoint, d.handle, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return d
}

func (d *FakeDaemon) handle(payload []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, append([]byte(nil), payload...))
	if env, err := protocol.Decode(payload); err == nil && env.Type == protocol.TypeNode {
		return []byte{byte(d.status)}
	}
	return []byte("ok")
}

// SetStatus changes the reply for subsequent node requests.
func (d *FakeDaemon) SetStatus(status protocol.Status) {
	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}

// Messages returns the payloads received so far, in order.
func (d *FakeDaemon) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.messages))
	for i, msg := range d.messages {
		out[i] = string(msg)
	}
	return out
}
