package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/bioexec/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Migrate applies the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := runMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveInvocation inserts one history row.
func (s *SQLiteStore) SaveInvocation(ctx context.Context, rec *model.InvocationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, tool, strategy, outcome, exit_info, stdout, stderr, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tool, rec.Strategy, rec.Outcome, rec.ExitInfo,
		rec.Stdout, rec.Stderr, rec.ElapsedMS, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save invocation %s: %w", rec.ID, err)
	}
	return nil
}

// GetInvocation returns one history row by ID.
func (s *SQLiteStore) GetInvocation(ctx context.Context, id string) (*model.InvocationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tool, strategy, outcome, exit_info, stdout, stderr, elapsed_ms, created_at
		 FROM invocations WHERE id = ?`, id)
	rec, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invocation %s: %w", id, err)
	}
	return rec, nil
}

// ListInvocations returns history rows, newest first, with the total
// count for pagination.
func (s *SQLiteStore) ListInvocations(ctx context.Context, opts model.ListOptions) ([]*model.InvocationRecord, int, error) {
	opts.Clamp()

	where := ""
	args := []any{}
	if opts.Tool != "" {
		where = " WHERE tool = ?"
		args = append(args, opts.Tool)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invocations"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invocations: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, strategy, outcome, exit_info, stdout, stderr, elapsed_ms, created_at
		 FROM invocations`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var out []*model.InvocationRecord
	for rows.Next() {
		rec, err := scanInvocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invocation: %w", err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row scanner) (*model.InvocationRecord, error) {
	var rec model.InvocationRecord
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Tool, &rec.Strategy, &rec.Outcome,
		&rec.ExitInfo, &rec.Stdout, &rec.Stderr, &rec.ElapsedMS, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
