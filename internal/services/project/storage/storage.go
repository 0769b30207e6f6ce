// Package storage defines the persistence contracts for the project service.
//
// A store keeps one append-only event stream per project plus the user records
// consulted before commands are dispatched. Adapters live in subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// ErrVersionConflict indicates the stream head moved past the expected sequence.
var ErrVersionConflict = errors.New("event stream version conflict")

// Journal appends and lists project events.
type Journal interface {
	// AppendEvents appends events after expectedSeq and returns them with Seq,
	// Hash, PrevHash and ChainHash assigned. It fails with ErrVersionConflict
	// when the stream head is not expectedSeq.
	AppendEvents(ctx context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error)
	// ListEvents returns up to limit events with Seq greater than afterSeq, ordered by Seq.
	ListEvents(ctx context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	Journal
	ProjectLister
	user.Store
	Close() error
}

// ProjectLister enumerates projects that have events.
type ProjectLister interface {
	ListProjectIDs(ctx context.Context) ([]string, error)
}
