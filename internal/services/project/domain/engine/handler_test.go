package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/storage"
	"github.com/louisbranch/taskboard/internal/services/project/storage/memory"
)

var fixedNow = time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

func newHandler(t *testing.T, journal storage.Journal) Handler {
	t.Helper()
	commands, events, err := NewRegistries()
	if err != nil {
		t.Fatalf("registries: %v", err)
	}
	return Handler{
		Commands: commands,
		Events:   events,
		Journal:  journal,
		Now:      func() time.Time { return fixedNow },
	}
}

func newCommand(t *testing.T, typ command.Type, payload any) command.Command {
	t.Helper()
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return command.Command{ProjectID: "proj-1", Type: typ, ActorID: "user-1", PayloadJSON: payloadJSON}
}

func createProject(t *testing.T, h Handler) Result {
	t.Helper()
	result, err := h.Create(context.Background(), newCommand(t, project.CommandTypeCreate, project.CreatePayload{Title: "Roadmap", CreatorID: "user-1"}))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return result
}

// conflictingJournal fails the first n appends with a version conflict.
type conflictingJournal struct {
	storage.Journal
	conflicts int
	appends   int
}

func (j *conflictingJournal) AppendEvents(ctx context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	j.appends++
	if j.conflicts > 0 {
		j.conflicts--
		return nil, storage.ErrVersionConflict
	}
	return j.Journal.AppendEvents(ctx, projectID, expectedSeq, events)
}

// corruptingJournal returns appended events with a payload Fold cannot decode.
type corruptingJournal struct {
	storage.Journal
}

func (j corruptingJournal) AppendEvents(ctx context.Context, projectID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	appended, err := j.Journal.AppendEvents(ctx, projectID, expectedSeq, events)
	if err != nil {
		return nil, err
	}
	for i := range appended {
		appended[i].PayloadJSON = []byte(`{"member_id":7}`)
	}
	return appended, nil
}

func TestCreate_PersistsAndApplies(t *testing.T) {
	store := memory.New()
	h := newHandler(t, store)

	result := createProject(t, h)
	if result.Event.Seq != 1 || result.Event.Type != project.EventTypeCreated {
		t.Fatalf("event = %+v", result.Event)
	}
	if !result.State.Created || result.State.Title != "Roadmap" {
		t.Fatalf("state = %+v", result.State)
	}
	if !result.Event.Timestamp.Equal(fixedNow) {
		t.Fatalf("timestamp = %s, want %s", result.Event.Timestamp, fixedNow)
	}

	events, err := store.ListEvents(context.Background(), "proj-1", 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("persisted %d events, want 1", len(events))
	}
}

func TestCreate_RejectsExistingStream(t *testing.T) {
	h := newHandler(t, memory.New())
	createProject(t, h)

	_, err := h.Create(context.Background(), newCommand(t, project.CommandTypeCreate, project.CreatePayload{Title: "Again", CreatorID: "user-1"}))
	if apperrors.GetCode(err) != apperrors.CodeProjectAlreadyExists {
		t.Fatalf("expected already exists, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindConflict {
		t.Fatalf("kind = %s, want conflict", apperrors.KindOf(err))
	}
}

func TestUpdate_RequiresExistingProject(t *testing.T) {
	h := newHandler(t, memory.New())

	_, err := h.Update(context.Background(), newCommand(t, project.CommandTypeMemberAdd, project.MemberPayload{MemberID: "user-2"}))
	if apperrors.GetCode(err) != apperrors.CodeProjectNotFound {
		t.Fatalf("expected project not found, got %v", err)
	}
}

func TestUpdate_MapsRejections(t *testing.T) {
	h := newHandler(t, memory.New())
	createProject(t, h)

	_, err := h.Update(context.Background(), newCommand(t, project.CommandTypeMemberRemove, project.MemberPayload{MemberID: "user-1"}))
	if apperrors.GetCode(err) != apperrors.CodeProjectCannotRemoveCreator {
		t.Fatalf("expected cannot remove creator, got %v", err)
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["command_type"] != string(project.CommandTypeMemberRemove) {
		t.Fatalf("expected command metadata, got %#v", err)
	}
}

func TestUpdate_InvalidCommandEnvelope(t *testing.T) {
	h := newHandler(t, memory.New())

	_, err := h.Update(context.Background(), command.Command{ProjectID: "proj-1", Type: "project.archive"})
	if !errors.Is(err, command.ErrTypeUnknown) {
		t.Fatalf("expected ErrTypeUnknown in chain, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindInvalidArgument {
		t.Fatalf("kind = %s, want invalid_argument", apperrors.KindOf(err))
	}
}

func TestUpdate_RetriesVersionConflicts(t *testing.T) {
	store := memory.New()
	journal := &conflictingJournal{Journal: store}
	h := newHandler(t, journal)
	createProject(t, h)

	journal.conflicts = 2
	journal.appends = 0
	result, err := h.Update(context.Background(), newCommand(t, project.CommandTypeMemberAdd, project.MemberPayload{MemberID: "user-2"}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if journal.appends != 3 {
		t.Fatalf("appends = %d, want 3", journal.appends)
	}
	if !result.State.IsMember("user-2") || result.Event.Seq != 2 {
		t.Fatalf("result = %+v", result)
	}
}

func TestUpdate_GivesUpAfterMaxAttempts(t *testing.T) {
	journal := &conflictingJournal{Journal: memory.New()}
	h := newHandler(t, journal)
	h.MaxAttempts = 2
	createProject(t, h)

	journal.conflicts = 5
	journal.appends = 0
	_, err := h.Update(context.Background(), newCommand(t, project.CommandTypeMemberAdd, project.MemberPayload{MemberID: "user-2"}))
	if apperrors.GetCode(err) != apperrors.CodeConcurrencyConflict {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected wrapped ErrVersionConflict, got %v", err)
	}
	if journal.appends != 2 {
		t.Fatalf("appends = %d, want 2", journal.appends)
	}
}

func TestUpdate_FoldFailureIsNonRetryable(t *testing.T) {
	store := memory.New()
	h := newHandler(t, store)
	createProject(t, h)

	h.Journal = corruptingJournal{Journal: store}
	_, err := h.Update(context.Background(), newCommand(t, project.CommandTypeMemberAdd, project.MemberPayload{MemberID: "user-2"}))
	if err == nil {
		t.Fatal("expected fold error")
	}
	if !IsNonRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeInternal {
		t.Fatalf("code = %s, want INTERNAL", apperrors.GetCode(err))
	}
}

func TestLoadExisting(t *testing.T) {
	h := newHandler(t, memory.New())
	if _, err := h.LoadExisting(context.Background(), "proj-1"); apperrors.GetCode(err) != apperrors.CodeProjectNotFound {
		t.Fatalf("expected project not found, got %v", err)
	}
	createProject(t, h)
	state, err := h.LoadExisting(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.CreatorID != "user-1" {
		t.Fatalf("creator = %q, want user-1", state.CreatorID)
	}
}

func TestHandler_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	h := newHandler(t, memory.New())
	h.Tracer = provider.Tracer("test")
	createProject(t, h)
	_, _ = h.Update(context.Background(), newCommand(t, project.CommandTypeUpdate, project.UpdatePayload{}))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "project.command.create" || spans[1].Name() != "project.command.update" {
		t.Fatalf("span names = %s, %s", spans[0].Name(), spans[1].Name())
	}
	if spans[1].Status().Description != string(apperrors.CodeProjectUpdateNoOp) {
		t.Fatalf("status = %+v, want no-op error", spans[1].Status())
	}
}

func TestHandler_RequiresDependencies(t *testing.T) {
	cmd := command.Command{ProjectID: "proj-1", Type: project.CommandTypeCreate}
	if _, err := (Handler{}).Create(context.Background(), cmd); !errors.Is(err, ErrCommandRegistryRequired) {
		t.Fatalf("expected ErrCommandRegistryRequired, got %v", err)
	}
	h := newHandler(t, nil)
	h.Journal = nil
	if _, err := h.Create(context.Background(), cmd); !errors.Is(err, ErrJournalRequired) {
		t.Fatalf("expected ErrJournalRequired, got %v", err)
	}
}
