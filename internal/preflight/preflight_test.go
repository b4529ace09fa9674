package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vyshim/internal/ipc"
	"vyshim/internal/logging"
	"vyshim/internal/session"
	"vyshim/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %#v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSocket(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	missing := CheckSocket("socket", cfg.SocketPath())
	if missing.Passed || !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("expected missing socket failure, got %#v", missing)
	}

	plain := filepath.Join(testsupport.BaseDir(cfg), "plain")
	testsupport.Touch(t, plain)
	if result := CheckSocket("socket", plain); result.Passed || !strings.Contains(result.Detail, "not a socket") {
		t.Fatalf("expected not-a-socket failure, got %#v", result)
	}

	srv, err := ipc.NewServer(context.Background(), cfg.Daemon.Endpoint, func([]byte) []byte { return nil }, logging.NewNop())
	if err != nil {
		t.Skipf("cannot bind socket: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	if result := CheckSocket("socket", cfg.SocketPath()); !result.Passed {
		t.Fatalf("expected live socket to pass, got %#v", result)
	}
}

func TestCheckDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := CheckDaemon(context.Background(), cfg.Daemon.Endpoint, 100*time.Millisecond); result.Passed {
		t.Fatalf("expected unreachable daemon, got %#v", result)
	}

	testsupport.StartDaemon(t, cfg.Daemon.Endpoint, 0x01)
	if result := CheckDaemon(context.Background(), cfg.Daemon.Endpoint, time.Second); !result.Passed {
		t.Fatalf("expected reachable daemon, got %#v", result)
	}
}

func TestCheckMarker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	marker := session.MarkerFromConfig(cfg, logging.NewNop())

	if result := CheckMarker(marker); !result.Passed || !strings.Contains(result.Detail, "absent") {
		t.Fatalf("unexpected absent result: %#v", result)
	}
	if err := marker.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result := CheckMarker(marker); !result.Passed || !strings.Contains(result.Detail, "present") {
		t.Fatalf("unexpected present result: %#v", result)
	}
}

func TestCheckJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if result := CheckJournal(context.Background(), cfg); !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("unexpected disabled result: %#v", result)
	}
	cfg.Journal.Enabled = true
	if result := CheckJournal(context.Background(), cfg); !result.Passed || !strings.Contains(result.Detail, "0 entries") {
		t.Fatalf("unexpected enabled result: %#v", result)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected shell and one dump binary, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected %s available, got %#v", status.Name, status)
		}
	}
}

func TestRunAllCoversEveryCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Daemon.DialTimeout = 1
	results := RunAll(context.Background(), cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"Daemon socket", "vyos-configd", "Marker directory", "Commit marker", "Shell", "Journal"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("RunAll missing %q in %s", want, joined)
		}
	}
}
