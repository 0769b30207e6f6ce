// Package replay rebuilds aggregate state by folding a project's event stream.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrFoldRequired indicates a missing fold function.
	ErrFoldRequired = errors.New("fold function is required")
	// ErrProjectIDRequired indicates a missing project id.
	ErrProjectIDRequired = errors.New("project id is required")
	// ErrSequenceGap indicates the stream skipped a sequence number.
	ErrSequenceGap = errors.New("event sequence gap")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// FoldFunc folds one event into state.
type FoldFunc[S any] func(state S, evt event.Event) (S, error)

// Options configures replay behavior.
type Options struct {
	// AfterSeq skips events at or below this sequence; state must already reflect them.
	AfterSeq uint64
	// UntilSeq stops after this sequence when non-zero.
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result[S any] struct {
	State   S
	LastSeq uint64
	Applied int
}

// Replay folds events in sequence order, starting after options.AfterSeq.
func Replay[S any](ctx context.Context, store EventStore, fold FoldFunc[S], projectID string, state S, options Options) (Result[S], error) {
	if store == nil {
		return Result[S]{}, ErrEventStoreRequired
	}
	if fold == nil {
		return Result[S]{}, ErrFoldRequired
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return Result[S]{}, ErrProjectIDRequired
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result[S]{State: state, LastSeq: options.AfterSeq}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		events, err := store.ListEvents(ctx, projectID, result.LastSeq, pageSize)
		if err != nil {
			return result, fmt.Errorf("list events: %w", err)
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expectedSeq, evt.Seq)
			}
			next, err := fold(result.State, evt)
			if err != nil {
				return result, fmt.Errorf("fold seq %d: %w", evt.Seq, err)
			}
			result.State = next
			result.LastSeq = evt.Seq
			result.Applied++
		}
		if len(events) < pageSize {
			return result, nil
		}
	}
}
