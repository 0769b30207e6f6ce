// Package postgres provides a Postgres-backed storage.Store using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

const uniqueViolation = "23505"

// Store is a Postgres event journal and user directory.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ storage.Store         = (*Store)(nil)
	_ storage.ProjectLister = (*Store)(nil)
)

// Open connects to dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// New wraps an existing pool. The caller owns migrations.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// AppendEvents seals events and inserts them in one transaction. Concurrent
// writers for the same seq collide on the primary key.
func (s *Store) AppendEvents(ctx context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		head int64
		prev string
	)
	err = tx.QueryRow(ctx, `
		SELECT seq, chain_hash
		FROM events
		WHERE project_id = @project_id
		ORDER BY seq DESC
		LIMIT 1`,
		pgx.NamedArgs{"project_id": projectID},
	).Scan(&head, &prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read stream head: %w", err)
	}
	if uint64(head) != expectedSeq {
		return nil, fmt.Errorf("%w: head %d, expected %d", storage.ErrVersionConflict, head, expectedSeq)
	}

	const insert = `
		INSERT INTO events (
			project_id, seq, event_hash, prev_hash, chain_hash, timestamp_ns,
			event_type, actor_id, request_id, entity_type, entity_id, payload_json
		) VALUES (
			@project_id, @seq, @event_hash, @prev_hash, @chain_hash, @timestamp_ns,
			@event_type, @actor_id, @request_id, @entity_type, @entity_id, @payload_json
		)`
	sealed := make([]event.Event, 0, len(events))
	for i, evt := range events {
		evt.ProjectID = projectID
		out, err := event.Seal(evt, expectedSeq+uint64(i)+1, prev)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, insert, pgx.NamedArgs{
			"project_id":   out.ProjectID,
			"seq":          int64(out.Seq),
			"event_hash":   out.Hash,
			"prev_hash":    out.PrevHash,
			"chain_hash":   out.ChainHash,
			"timestamp_ns": out.Timestamp.UTC().UnixNano(),
			"event_type":   string(out.Type),
			"actor_id":     out.ActorID,
			"request_id":   out.RequestID,
			"entity_type":  out.EntityType,
			"entity_id":    out.EntityID,
			"payload_json": out.PayloadJSON,
		}); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %v", storage.ErrVersionConflict, err)
			}
			return nil, fmt.Errorf("insert event seq %d: %w", out.Seq, err)
		}
		sealed = append(sealed, out)
		prev = out.ChainHash
	}
	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", storage.ErrVersionConflict, err)
		}
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return sealed, nil
}

// ListEvents returns up to limit events after afterSeq in sequence order.
func (s *Store) ListEvents(ctx context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error) {
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT project_id, seq, event_hash, prev_hash, chain_hash, timestamp_ns,
		       event_type, actor_id, request_id, entity_type, entity_id, payload_json
		FROM events
		WHERE project_id = @project_id AND seq > @after_seq
		ORDER BY seq
		LIMIT @limit`,
		pgx.NamedArgs{"project_id": projectID, "after_seq": int64(afterSeq), "limit": limitArg},
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt         event.Event
			seq         int64
			timestampNS int64
			eventType   string
		)
		if err := rows.Scan(
			&evt.ProjectID, &seq, &evt.Hash, &evt.PrevHash, &evt.ChainHash, &timestampNS,
			&eventType, &evt.ActorID, &evt.RequestID, &evt.EntityType, &evt.EntityID, &evt.PayloadJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
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
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT project_id FROM events ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan project ids: %w", err)
	}
	return ids, nil
}

// GetUser returns the user or user.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (user.State, error) {
	var u user.State
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, name, created_at FROM users WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID},
	).Scan(&u.UserID, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.State{}, user.ErrNotFound
	}
	if err != nil {
		return user.State{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// PutUser inserts a user or returns user.ErrAlreadyExists.
func (s *Store) PutUser(ctx context.Context, u user.State) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id, name, created_at) VALUES (@user_id, @name, @created_at)`,
		pgx.NamedArgs{"user_id": u.UserID, "name": u.Name, "created_at": u.CreatedAt.UTC()},
	)
	if isUniqueViolation(err) {
		return user.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
