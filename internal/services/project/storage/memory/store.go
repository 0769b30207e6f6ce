// Package memory provides an in-process storage.Store for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// Store keeps event streams in a mutex-guarded map.
type Store struct {
	*user.MemoryDirectory

	mu      sync.RWMutex
	streams map[string][]event.Event
}

var (
	_ storage.Store         = (*Store)(nil)
	_ storage.ProjectLister = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		MemoryDirectory: user.NewMemoryDirectory(),
		streams:         make(map[string][]event.Event),
	}
}

// AppendEvents seals and appends events when the stream head equals expectedSeq.
func (s *Store) AppendEvents(_ context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[projectID]
	if head := uint64(len(stream)); head != expectedSeq {
		return nil, fmt.Errorf("%w: head %d, expected %d", storage.ErrVersionConflict, head, expectedSeq)
	}
	prev := ""
	if len(stream) > 0 {
		prev = stream[len(stream)-1].ChainHash
	}
	sealed := make([]event.Event, 0, len(events))
	for i, evt := range events {
		evt.ProjectID = projectID
		evt.PayloadJSON = append([]byte(nil), evt.PayloadJSON...)
		out, err := event.Seal(evt, expectedSeq+uint64(i)+1, prev)
		if err != nil {
			return nil, err
		}
		sealed = append(sealed, out)
		prev = out.ChainHash
	}
	s.streams[projectID] = append(stream, sealed...)
	return append([]event.Event(nil), sealed...), nil
}

// ListEvents returns up to limit events after afterSeq.
func (s *Store) ListEvents(_ context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[projectID]
	if afterSeq >= uint64(len(stream)) {
		return nil, nil
	}
	rest := stream[afterSeq:]
	if limit > 0 && len(rest) > limit {
		rest = rest[:limit]
	}
	return append([]event.Event(nil), rest...), nil
}

// ListProjectIDs returns every project id with at least one event.
func (s *Store) ListProjectIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.streams))
	for id, stream := range s.streams {
		if len(stream) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
