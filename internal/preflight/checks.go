package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vyshim/internal/config"
	"vyshim/internal/ipc"
	"vyshim/internal/journal"
	"vyshim/internal/session"
)

// CheckSocket verifies that path is a Unix socket the caller can write to.
func CheckSocket(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a socket)", path)}
	}
	if err := unix.Access(path, unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDaemon dials endpoint without sending a request.
func CheckDaemon(ctx context.Context, endpoint string, timeout time.Duration) Result {
	const name = "vyos-configd"

	checkCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	ch, err := ipc.Dial(checkCtx, endpoint, ipc.Options{DialTimeout: timeout})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	_ = ch.Close()
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMarker reports whether a commit session is waiting to be initialized.
// Either state passes.
func CheckMarker(marker *session.Marker) Result {
	const name = "Commit marker"

	exists, err := marker.Exists()
	switch {
	case err != nil:
		return Result{Name: name, Detail: err.Error()}
	case exists:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (present: next invocation initializes)", marker.Path())}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (absent)", marker.Path())}
	}
}

// CheckJournal opens the journal when enabled and reports its size.
func CheckJournal(ctx context.Context, cfg *config.Config) Result {
	const name = "Journal"

	if !cfg.Journal.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", store.Path(), count)}
}
