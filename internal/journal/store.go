package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded invocation.
type Entry struct {
	ID           int64
	InvocationID string
	StartedAt    time.Time
	Duration     time.Duration
	Descriptor   string
	Initialized  bool
	Status       uint8
	Outcome      string
	ExitCode     int
	Error        string
}

// Store persists entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record appends entry.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.InvocationID == "" {
		return errors.New("record invocation: missing invocation id")
	}
	started := entry.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (
            invocation_id, started_at, duration_ms, descriptor, initialized,
            status, outcome, exit_code, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.InvocationID,
		started.UTC().Format(time.RFC3339Nano),
		entry.Duration.Milliseconds(),
		entry.Descriptor,
		boolToInt(entry.Initialized),
		int(entry.Status),
		entry.Outcome,
		entry.ExitCode,
		nullableString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("record invocation: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, invocation_id, started_at, duration_ms, descriptor, initialized,
            status, outcome, exit_code, error_message
        FROM invocations ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return entries, nil
}

// Count returns the number of recorded entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM invocations").Scan(&count); err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return count, nil
}

// Prune keeps the newest keep entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune invocations: keep must be >= 0, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM invocations WHERE id NOT IN (
            SELECT id FROM invocations ORDER BY id DESC LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune invocations: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune invocations: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry       Entry
		startedAt   string
		durationMS  int64
		initialized int
		status      int
		errMsg      sql.NullString
	)
	if err := row.Scan(
		&entry.ID,
		&entry.InvocationID,
		&startedAt,
		&durationMS,
		&entry.Descriptor,
		&initialized,
		&status,
		&entry.Outcome,
		&entry.ExitCode,
		&errMsg,
	); err != nil {
		return Entry{}, fmt.Errorf("scan invocation: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	entry.StartedAt = ts
	entry.Duration = time.Duration(durationMS) * time.Millisecond
	entry.Initialized = initialized != 0
	entry.Status = uint8(status)
	entry.Error = errMsg.String
	return entry, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
