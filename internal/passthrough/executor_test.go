package passthrough_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vyshim/internal/logging"
	"vyshim/internal/passthrough"
	"vyshim/internal/protocol"
)

func baseEnv() []string {
	return []string{"PATH=/usr/bin:/bin", "vyos_libexec_dir=/usr/libexec/vyos"}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestReplaceCallsExecWithBasename(t *testing.T) {
	var gotPath string
	var gotArgv, gotEnv []string
	exec := func(argv0 string, argv []string, envv []string) error {
		gotPath, gotArgv, gotEnv = argv0, argv, envv
		return errors.New("exec format error")
	}
	e := passthrough.New(logging.NewNop(), passthrough.WithExecFunc(exec), passthrough.WithEnviron(baseEnv))

	err := e.Replace("VYOS_TAGNODE_VALUE=eth0", "/usr/libexec/vyos/conf_mode/interfaces_ethernet.py")
	if protocol.KindOf(err) != protocol.KindProcess {
		t.Fatalf("expected process error, got %v", err)
	}
	if gotPath != "/usr/libexec/vyos/conf_mode/interfaces_ethernet.py" {
		t.Fatalf("unexpected exec path %q", gotPath)
	}
	if len(gotArgv) != 1 || gotArgv[0] != "interfaces_ethernet.py" {
		t.Fatalf("unexpected argv %q", gotArgv)
	}
	if gotEnv[len(gotEnv)-1] != "VYOS_TAGNODE_VALUE=eth0" {
		t.Fatalf("assignment missing from env %q", gotEnv)
	}
}

func TestEnvironment(t *testing.T) {
	e := passthrough.New(logging.NewNop(), passthrough.WithEnviron(baseEnv))

	cases := []struct {
		name       string
		assignment string
		want       []string
	}{
		{name: "empty", assignment: "", want: baseEnv()},
		{name: "malformed", assignment: "eth0", want: baseEnv()},
		{name: "new", assignment: "VYOS_TAGNODE_VALUE=eth0", want: append(baseEnv(), "VYOS_TAGNODE_VALUE=eth0")},
		{name: "override", assignment: "PATH=/opt/bin", want: []string{"vyos_libexec_dir=/usr/libexec/vyos", "PATH=/opt/bin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Environment(tc.assignment)
			if strings.Join(got, "\n") != strings.Join(tc.want, "\n") {
				t.Fatalf("Environment(%q) = %q, want %q", tc.assignment, got, tc.want)
			}
		})
	}
}

func TestParseAssignment(t *testing.T) {
	if k, v, ok := passthrough.ParseAssignment("A=b=c"); !ok || k != "A" || v != "b=c" {
		t.Fatalf("unexpected parse: %q %q %v", k, v, ok)
	}
	for _, bad := range []string{"", "novalue", "=x"} {
		if _, _, ok := passthrough.ParseAssignment(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSpawnPropagatesExitStatus(t *testing.T) {
	script := writeScript(t, `echo "tag=$NODE_TAG"; exit 3`)
	var stdout bytes.Buffer
	e := passthrough.New(logging.NewNop(),
		passthrough.WithEnviron(baseEnv),
		passthrough.WithStdio(nil, &stdout, &bytes.Buffer{}),
	)

	code, err := e.Spawn(context.Background(), "NODE_TAG=eth0", script)
	if err != nil {
		t.Fatalf("Spawn returned error: %v", err)
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != "tag=eth0" {
		t.Fatalf("unexpected child output %q", got)
	}
}

func TestSpawnMissingTarget(t *testing.T) {
	e := passthrough.New(logging.NewNop(), passthrough.WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{}))
	code, err := e.Spawn(context.Background(), "", filepath.Join(t.TempDir(), "missing.py"))
	if protocol.KindOf(err) != protocol.KindProcess || code != protocol.ExitProcess {
		t.Fatalf("expected process error, got code=%d err=%v", code, err)
	}
}

func TestRunChildCapturesOutputIgnoringExitCode(t *testing.T) {
	e := passthrough.New(logging.NewNop(), passthrough.WithStdio(nil, nil, &bytes.Buffer{}))

	out, err := e.RunChild(context.Background(), "/bin/sh", "printf 'interfaces {\\n}\\n'; exit 1")
	if err != nil {
		t.Fatalf("RunChild returned error: %v", err)
	}
	if string(out) != "interfaces {\n}\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunChildMissingShell(t *testing.T) {
	e := passthrough.New(logging.NewNop())
	if _, err := e.RunChild(context.Background(), filepath.Join(t.TempDir(), "nosh"), "true"); err == nil {
		t.Fatal("expected error for missing shell")
	}
}
