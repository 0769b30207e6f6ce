package project

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
)

var fixedNow = time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newCommand(t *testing.T, typ command.Type, payload any) command.Command {
	t.Helper()
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return command.Command{
		ProjectID:   "proj-1",
		Type:        typ,
		ActorID:     "user-1",
		PayloadJSON: payloadJSON,
	}
}

// decideOne runs a command that must be accepted and returns its event.
func decideOne(t *testing.T, state State, cmd command.Command) event.Event {
	t.Helper()
	decision := Decide(state, cmd, clock)
	if len(decision.Rejections) != 0 {
		t.Fatalf("%s rejected: %+v", cmd.Type, decision.Rejections)
	}
	if len(decision.Events) != 1 {
		t.Fatalf("%s emitted %d events, want 1", cmd.Type, len(decision.Events))
	}
	return decision.Events[0]
}

// apply decides a command that must be accepted and folds its event.
func apply(t *testing.T, state State, cmd command.Command) State {
	t.Helper()
	next, err := Fold(state, decideOne(t, state, cmd))
	if err != nil {
		t.Fatalf("fold %s: %v", cmd.Type, err)
	}
	return next
}

func requireRejected(t *testing.T, state State, cmd command.Command, code string) {
	t.Helper()
	decision := Decide(state, cmd, clock)
	if len(decision.Events) != 0 {
		t.Fatalf("%s emitted events, expected rejection %s", cmd.Type, code)
	}
	if len(decision.Rejections) != 1 {
		t.Fatalf("%s rejections = %d, want 1", cmd.Type, len(decision.Rejections))
	}
	if decision.Rejections[0].Code != code {
		t.Fatalf("%s rejection code = %s, want %s", cmd.Type, decision.Rejections[0].Code, code)
	}
}

func createdState(t *testing.T) State {
	t.Helper()
	return apply(t, State{}, newCommand(t, CommandTypeCreate, CreatePayload{Title: "Roadmap", CreatorID: "user-1"}))
}

func stringPtr(value string) *string {
	return &value
}

func decodeEventPayload[T any](t *testing.T, evt event.Event) T {
	t.Helper()
	var payload T
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal %s payload: %v", evt.Type, err)
	}
	return payload
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
