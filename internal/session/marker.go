package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"vyshim/internal/config"
	"vyshim/internal/logging"
)

const lockRetryDelay = 10 * time.Millisecond

// Marker is a State backed by an existence-only file.
type Marker struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewMarker builds a Marker. An empty lockPath disables locking.
func NewMarker(path, lockPath string, lockTimeout time.Duration, logger *slog.Logger) *Marker {
	return &Marker{
		path:        path,
		lockPath:    lockPath,
		lockTimeout: lockTimeout,
		logger:      logging.NewComponentLogger(logger, "session"),
	}
}

// MarkerFromConfig builds the Marker described by cfg.
func MarkerFromConfig(cfg *config.Config, logger *slog.Logger) *Marker {
	return NewMarker(cfg.Session.CommitMarker, cfg.Session.LockPath, cfg.LockTimeout(), logger)
}

// Path returns the marker file path.
func (m *Marker) Path() string {
	return m.path
}

// CheckAndConsume deletes the marker if it exists and reports whether it did.
// A marker that cannot be checked or deleted still reports true so the
// handshake is repeated rather than skipped.
func (m *Marker) CheckAndConsume() bool {
	unlock := m.lock()
	defer unlock()

	if _, err := os.Stat(m.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false
		}
		logging.WarnWithContext(m.logger, "commit marker check failed", "marker_stat_failed",
			logging.String("path", m.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "init handshake sent without a confirmed marker"),
			logging.String(logging.FieldErrorHint, "check permissions on the marker directory"),
		)
		return true
	}

	if err := os.Remove(m.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("commit marker consumed by another invocation", logging.String("path", m.path))
			return false
		}
		logging.WarnWithContext(m.logger, "commit marker could not be removed", "marker_remove_failed",
			logging.String("path", m.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "later invocations repeat the init handshake"),
			logging.String(logging.FieldErrorHint, "remove the marker manually after the commit"),
		)
		return true
	}

	m.logger.Debug("commit marker consumed", logging.String("path", m.path))
	return true
}

func (m *Marker) lock() func() {
	if m.lockPath == "" {
		return func() {}
	}

	fl := flock.New(m.lockPath)
	var (
		ok  bool
		err error
	)
	if m.lockTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), m.lockTimeout)
		defer cancel()
		ok, err = fl.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = fl.TryLock()
	}
	if err != nil || !ok {
		if err == nil {
			err = errors.New("lock held by another process")
		}
		logging.WarnWithContext(m.logger, "commit marker lock unavailable", "marker_lock_failed",
			logging.String("lock", m.lockPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "marker consumed without lock"),
		)
		return func() {}
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			m.logger.Debug("release marker lock failed", logging.Error(err))
		}
	}
}

// Exists reports whether the marker is present.
func (m *Marker) Exists() (bool, error) {
	_, err := os.Stat(m.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat commit marker: %w", err)
	}
}

// Create raises the marker, as the front end does when a commit starts.
func (m *Marker) Create() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create commit marker: %w", err)
	}
	return f.Close()
}

// Clear removes the marker without triggering a handshake. It reports whether
// a marker was removed.
func (m *Marker) Clear() (bool, error) {
	unlock := m.lock()
	defer unlock()
	if err := os.Remove(m.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove commit marker: %w", err)
	}
	return true, nil
}
