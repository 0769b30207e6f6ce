// Package sqlite provides a SQLite-backed storage.Store using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/louisbranch/taskboard/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// Store is a SQLite event journal and user directory.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ storage.Store         = (*Store)(nil)
	_ storage.ProjectLister = (*Store)(nil)
)

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrationFS, migrationRoot); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// openDB opens a single-connection pool so writers serialize inside the process.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return sqlDB, nil
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEvents seals events and inserts them in one transaction after checking
// the stream head against expectedSeq.
func (s *Store) AppendEvents(ctx context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var head uint64
	var prev string
	err = tx.QueryRowContext(ctx,
		`SELECT seq, chain_hash FROM events WHERE project_id = ? ORDER BY seq DESC LIMIT 1`,
		projectID,
	).Scan(&head, &prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read stream head: %w", err)
	}
	if head != expectedSeq {
		return nil, fmt.Errorf("%w: head %d, expected %d", storage.ErrVersionConflict, head, expectedSeq)
	}

	sealed := make([]event.Event, 0, len(events))
	for i, evt := range events {
		evt.ProjectID = projectID
		out, err := event.Seal(evt, expectedSeq+uint64(i)+1, prev)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO events (
    project_id, seq, event_hash, prev_hash, chain_hash, timestamp_ns,
    event_type, actor_id, request_id, entity_type, entity_id, payload_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			out.ProjectID, out.Seq, out.Hash, out.PrevHash, out.ChainHash, out.Timestamp.UTC().UnixNano(),
			string(out.Type), out.ActorID, out.RequestID, out.EntityType, out.EntityID, out.PayloadJSON,
		); err != nil {
			if isConstraintError(err) || isBusyError(err) {
				return nil, fmt.Errorf("%w: %v", storage.ErrVersionConflict, err)
			}
			return nil, fmt.Errorf("insert event seq %d: %w", out.Seq, err)
		}
		sealed = append(sealed, out)
		prev = out.ChainHash
	}
	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return nil, fmt.Errorf("%w: %v", storage.ErrVersionConflict, err)
		}
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return sealed, nil
}

// ListEvents returns up to limit events after afterSeq in sequence order.
func (s *Store) ListEvents(ctx context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT project_id, seq, event_hash, prev_hash, chain_hash, timestamp_ns,
       event_type, actor_id, request_id, entity_type, entity_id, payload_json
FROM events
WHERE project_id = ? AND seq > ?
ORDER BY seq
LIMIT ?`, projectID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt         event.Event
			timestampNS int64
			eventType   string
		)
		if err := rows.Scan(
			&evt.ProjectID, &evt.Seq, &evt.Hash, &evt.PrevHash, &evt.ChainHash, &timestampNS,
			&eventType, &evt.ActorID, &evt.RequestID, &evt.EntityType, &evt.EntityID, &evt.PayloadJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Timestamp = time.Unix(0, timestampNS).UTC()
		evt.Type = event.Type(eventType)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// ListProjectIDs returns every project id with at least one event.
func (s *Store) ListProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT project_id FROM events ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUser returns the user or user.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (user.State, error) {
	var (
		u         user.State
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, name, created_at FROM users WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user.State{}, user.ErrNotFound
	}
	if err != nil {
		return user.State{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

// PutUser inserts a user or returns user.ErrAlreadyExists.
func (s *Store) PutUser(ctx context.Context, u user.State) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (user_id, name, created_at) VALUES (?, ?, ?)`,
		u.UserID, u.Name, u.CreatedAt.UTC().UnixMilli(),
	)
	if isConstraintError(err) {
		return user.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
