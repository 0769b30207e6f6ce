// Package storagetest holds the behavior suite every storage.Store adapter runs.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// Factory opens a fresh, empty store for one test.
type Factory func(t *testing.T) storage.Store

// Run exercises the journal and user directory contracts against a store.
func Run(t *testing.T, open Factory) {
	t.Run("append assigns sequence and hashes", func(t *testing.T) {
		testAppendAssignsIntegrity(t, open(t))
	})
	t.Run("append rejects stale expected seq", func(t *testing.T) {
		testAppendVersionConflict(t, open(t))
	})
	t.Run("list pages in order", func(t *testing.T) {
		testListPaging(t, open(t))
	})
	t.Run("streams are isolated per project", func(t *testing.T) {
		testStreamIsolation(t, open(t))
	})
	t.Run("concurrent appends serialize", func(t *testing.T) {
		testConcurrentAppends(t, open(t))
	})
	t.Run("users", func(t *testing.T) {
		testUsers(t, open(t))
	})
}

// NewEvent builds an unsealed event for tests.
func NewEvent(projectID string, n int) event.Event {
	return event.Event{
		ProjectID:   projectID,
		Type:        "task.created",
		Timestamp:   time.Date(2026, 1, 1, 0, 0, n, 0, time.UTC),
		ActorID:     "user-1",
		RequestID:   fmt.Sprintf("req-%d", n),
		EntityType:  "task",
		EntityID:    fmt.Sprintf("task-%d", n),
		PayloadJSON: []byte(fmt.Sprintf(`{"name":"Task %d","task_id":"task-%d"}`, n, n)),
	}
}

func testAppendAssignsIntegrity(t *testing.T, store storage.Store) {
	ctx := context.Background()

	first, err := store.AppendEvents(ctx, "proj-1", 0, []event.Event{NewEvent("proj-1", 1)})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, uint64(1), first[0].Seq)
	assert.NotEmpty(t, first[0].Hash)
	assert.Empty(t, first[0].PrevHash)
	assert.NotEmpty(t, first[0].ChainHash)

	second, err := store.AppendEvents(ctx, "proj-1", 1, []event.Event{NewEvent("proj-1", 2), NewEvent("proj-1", 3)})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, uint64(2), second[0].Seq)
	assert.Equal(t, uint64(3), second[1].Seq)
	assert.Equal(t, first[0].ChainHash, second[0].PrevHash)

	events, err := store.ListEvents(ctx, "proj-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.NoError(t, event.VerifyChain(events))
	assert.Equal(t, "req-2", events[1].RequestID)
	assert.JSONEq(t, `{"name":"Task 3","task_id":"task-3"}`, string(events[2].PayloadJSON))
	assert.True(t, events[0].Timestamp.Equal(time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)))
}

func testAppendVersionConflict(t *testing.T, store storage.Store) {
	ctx := context.Background()

	_, err := store.AppendEvents(ctx, "proj-1", 0, []event.Event{NewEvent("proj-1", 1)})
	require.NoError(t, err)

	_, err = store.AppendEvents(ctx, "proj-1", 0, []event.Event{NewEvent("proj-1", 2)})
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	_, err = store.AppendEvents(ctx, "proj-1", 5, []event.Event{NewEvent("proj-1", 2)})
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	events, err := store.ListEvents(ctx, "proj-1", 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func testListPaging(t *testing.T, store storage.Store) {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := store.AppendEvents(ctx, "proj-1", uint64(i-1), []event.Event{NewEvent("proj-1", i)})
		require.NoError(t, err)
	}

	page, err := store.ListEvents(ctx, "proj-1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Seq)
	assert.Equal(t, uint64(3), page[1].Seq)

	tail, err := store.ListEvents(ctx, "proj-1", 4, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, uint64(5), tail[0].Seq)

	empty, err := store.ListEvents(ctx, "proj-1", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	missing, err := store.ListEvents(ctx, "proj-404", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func testStreamIsolation(t *testing.T, store storage.Store) {
	ctx := context.Background()

	_, err := store.AppendEvents(ctx, "proj-1", 0, []event.Event{NewEvent("proj-1", 1)})
	require.NoError(t, err)
	other, err := store.AppendEvents(ctx, "proj-2", 0, []event.Event{NewEvent("proj-2", 1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other[0].Seq)
}

func testConcurrentAppends(t *testing.T, store storage.Store) {
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.AppendEvents(ctx, "proj-1", 0, []event.Event{NewEvent("proj-1", i+1)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	}
	assert.Equal(t, 1, succeeded)

	events, err := store.ListEvents(ctx, "proj-1", 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func testUsers(t *testing.T, store storage.Store) {
	ctx := context.Background()

	_, err := store.GetUser(ctx, "user-1")
	require.ErrorIs(t, err, user.ErrNotFound)

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, store.PutUser(ctx, user.State{UserID: "user-1", Name: "Ada", CreatedAt: created}))
	require.ErrorIs(t, store.PutUser(ctx, user.State{UserID: "user-1", Name: "Other"}), user.ErrAlreadyExists)

	got, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.True(t, got.CreatedAt.Equal(created))
}
