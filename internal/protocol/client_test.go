package protocol_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vyshim/internal/protocol"
)

type fakeChannel struct {
	sent    [][]byte
	replies [][]byte
	failAt  int
	err     error
}

func (f *fakeChannel) Request(_ context.Context, payload []byte) ([]byte, error) {
	f.sent = append(f.sent, append([]byte(nil), payload...))
	if f.err != nil && len(f.sent) == f.failAt {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return []byte{byte(protocol.StatusSuccess)}, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type flagSession struct {
	present bool
	checks  int
}

func (s *flagSession) CheckAndConsume() bool {
	s.checks++
	was := s.present
	s.present = false
	return was
}

type fakeSnapshots struct {
	active, working       []byte
	activeErr, workingErr error
}

func (f fakeSnapshots) Active(context.Context) ([]byte, error)  { return f.active, f.activeErr }
func (f fakeSnapshots) Working(context.Context) ([]byte, error) { return f.working, f.workingErr }

func TestRunWithMarkerPerformsHandshake(t *testing.T) {
	channel := &fakeChannel{replies: [][]byte{[]byte("ok"), []byte("ok"), []byte("ok"), {byte(protocol.StatusSuccess)}}}
	session := &flagSession{present: true}
	snaps := fakeSnapshots{active: []byte("interfaces {\n}\n"), working: []byte("system {\n}\n")}
	client := protocol.NewClient(channel, session, snaps, nil)

	out, err := client.Run(context.Background(), []string{"", "eth0", "/opt/vyatta/.../interface.py"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !out.Initialized {
		t.Fatal("expected Initialized to be true")
	}
	if out.Kind != protocol.OutcomeExit || out.Code != protocol.ExitSuccess {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	want := []string{
		`{"type":"init"}`,
		"interfaces {\n}\n",
		"system {\n}\n",
		`{"type":"node","data":"/opt/vyatta/.../interface.pyeth0"}`,
	}
	if len(channel.sent) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(channel.sent), len(want))
	}
	for i, msg := range want {
		if string(channel.sent[i]) != msg {
			t.Fatalf("message %d = %q, want %q", i, channel.sent[i], msg)
		}
	}
}

func TestRunWithoutMarkerSkipsHandshake(t *testing.T) {
	channel := &fakeChannel{}
	session := &flagSession{}
	client := protocol.NewClient(channel, session, fakeSnapshots{}, nil)

	out, err := client.Run(context.Background(), []string{"/x.py"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.Initialized || len(channel.sent) != 1 {
		t.Fatalf("expected only the node message, sent %d (initialized=%v)", len(channel.sent), out.Initialized)
	}
	if session.checks != 1 {
		t.Fatalf("expected one marker check, got %d", session.checks)
	}
}

func TestInitializeSendsEmptyBlobOnSnapshotFailure(t *testing.T) {
	channel := &fakeChannel{}
	snaps := fakeSnapshots{activeErr: errors.New("cli-shell-api: not found"), working: nil}
	client := protocol.NewClient(channel, nil, snaps, nil)

	if err := client.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if len(channel.sent) != 3 {
		t.Fatalf("expected 3 handshake messages, got %d", len(channel.sent))
	}
	if len(channel.sent[1]) != 0 || len(channel.sent[2]) != 0 {
		t.Fatalf("expected empty snapshot payloads, got %q and %q", channel.sent[1], channel.sent[2])
	}
}

func TestInitializeChannelFailureIsFatal(t *testing.T) {
	channel := &fakeChannel{failAt: 2, err: errors.New("socket closed")}
	session := &flagSession{present: true}
	client := protocol.NewClient(channel, session, fakeSnapshots{active: []byte("a")}, nil)

	out, err := client.Run(context.Background(), []string{"/x.py"})
	if protocol.KindOf(err) != protocol.KindChannel {
		t.Fatalf("expected channel error, got %v", err)
	}
	if len(channel.sent) != 2 {
		t.Fatalf("handshake must stop at the failed request, sent %d", len(channel.sent))
	}
	if out.Code != protocol.ExitChannel || out.Kind != protocol.OutcomeExit {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestUpdateNodeOutcomes(t *testing.T) {
	cases := []struct {
		name     string
		reply    []byte
		trailing []string
		kind     protocol.OutcomeKind
		code     int
		env      string
		path     string
	}{
		{name: "success", reply: []byte{0x01}, trailing: []string{"/x.py"}, kind: protocol.OutcomeExit, code: protocol.ExitSuccess},
		{name: "no bits", reply: []byte{0x00}, trailing: []string{"/x.py"}, kind: protocol.OutcomeExit, code: protocol.ExitSuccess},
		{name: "commit error", reply: []byte{0x02}, trailing: []string{"/x.py"}, kind: protocol.OutcomeExit, code: protocol.ExitRejected},
		{name: "daemon error", reply: []byte{0x04}, trailing: []string{"/x.py"}, kind: protocol.OutcomeExit, code: protocol.ExitRejected},
		{name: "empty reply", reply: []byte{}, trailing: []string{"/x.py"}, kind: protocol.OutcomeExit, code: protocol.ExitRejected},
		{name: "pass single", reply: []byte{0x08}, trailing: []string{"/x.py"}, kind: protocol.OutcomeReplace, path: "/x.py"},
		{name: "pass with tag", reply: []byte{0x08}, trailing: []string{"eth0", "/x.py"}, kind: protocol.OutcomeReplace, env: "eth0", path: "/x.py"},
		{name: "pass beats error", reply: []byte{0x0e}, trailing: []string{"VAR=1", "eth0", "/x.py"}, kind: protocol.OutcomeReplace, env: "eth0", path: "/x.py"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			channel := &fakeChannel{replies: [][]byte{tc.reply}}
			client := protocol.NewClient(channel, nil, nil, nil)

			out, err := client.UpdateNode(context.Background(), tc.trailing)
			if err != nil {
				t.Fatalf("UpdateNode returned error: %v", err)
			}
			if out.Kind != tc.kind || out.Code != tc.code || out.Env != tc.env || out.Path != tc.path {
				t.Fatalf("unexpected outcome: %+v", out)
			}
			if (out.Err() != nil) != (tc.code == protocol.ExitRejected) {
				t.Fatalf("Err() = %v for outcome %+v", out.Err(), out)
			}
		})
	}
}

func TestUpdateNodeReceiveTimeoutMapsToDaemonError(t *testing.T) {
	channel := &fakeChannel{failAt: 1, err: fmt.Errorf("receive: %w", context.DeadlineExceeded)}
	client := protocol.NewClient(channel, nil, nil, nil)

	out, err := client.UpdateNode(context.Background(), []string{"/x.py"})
	if protocol.KindOf(err) != protocol.KindChannel {
		t.Fatalf("expected channel error, got %v", err)
	}
	if out.Code != protocol.ExitRejected || protocol.ExitCodeFor(err) != protocol.ExitRejected {
		t.Fatalf("timeout should exit like ERROR_DAEMON, got %d", out.Code)
	}
}

func TestRunRequiresArguments(t *testing.T) {
	client := protocol.NewClient(&fakeChannel{}, &flagSession{present: true}, nil, nil)
	if _, err := client.Run(context.Background(), nil); !errors.Is(err, protocol.ErrNoArguments) {
		t.Fatalf("expected ErrNoArguments, got %v", err)
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, protocol.ExitSuccess},
		{protocol.NewError(protocol.KindChannel, "dial", errors.New("refused")), protocol.ExitChannel},
		{protocol.NewError(protocol.KindProcess, "exec", errors.New("enoent")), protocol.ExitProcess},
		{fmt.Errorf("wrapped: %w", protocol.NewError(protocol.KindRejected, "node", nil)), protocol.ExitRejected},
		{errors.New("bad config"), protocol.ExitSetup},
	}
	for _, tc := range cases {
		if got := protocol.ExitCodeFor(tc.err); got != tc.want {
			t.Fatalf("ExitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
