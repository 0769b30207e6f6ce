package project

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
)

// ErrUnknownEventType indicates an event outside the project catalog reached Fold.
var ErrUnknownEventType = errors.New("unknown project event type")

// FoldHandledTypes returns every event type Fold understands.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeCreated,
		EventTypeUpdated,
		EventTypeMemberAdded,
		EventTypeMemberRemoved,
		EventTypeTaskCreated,
		EventTypeTaskUpdated,
		EventTypeTaskAssigned,
		EventTypeTaskTagAdded,
		EventTypeTaskDeleted,
		EventTypeTagCreated,
		EventTypeTagDeleted,
	}
}

// Fold applies an event to project state.
//
// Fold trusts the event: business rules were checked when the event was
// decided. Maps reachable from the input state are never mutated, so a state
// handed out earlier stays stable.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeCreated:
		var payload CreatedPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state = State{
			Created:        true,
			ProjectID:      payload.ProjectID,
			Title:          payload.Title,
			Description:    payload.Description,
			CreatorID:      payload.CreatorID,
			Members:        map[string]struct{}{payload.CreatorID: {}},
			Tasks:          map[string]Task{},
			Tags:           map[string]Tag{},
			DeletedTaskIDs: map[string]struct{}{},
			DeletedTagIDs:  map[string]struct{}{},
		}
		if state.ProjectID == "" {
			state.ProjectID = evt.ProjectID
		}
		for _, member := range payload.Members {
			state.Members[member] = struct{}{}
		}

	case EventTypeUpdated:
		var payload UpdatePayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		if payload.Title != nil {
			state.Title = *payload.Title
		}
		if payload.Description != nil {
			state.Description = *payload.Description
		}

	case EventTypeMemberAdded:
		var payload MemberPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Members = copySet(state.Members)
		state.Members[payload.MemberID] = struct{}{}

	case EventTypeMemberRemoved:
		var payload MemberRemovedPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Members = copySet(state.Members)
		delete(state.Members, payload.MemberID)

	case EventTypeTaskCreated:
		var payload TaskCreatePayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tasks = copyTasks(state.Tasks)
		state.Tasks[payload.TaskID] = Task{
			TaskID:      payload.TaskID,
			Name:        payload.Name,
			Description: payload.Description,
			TagIDs:      map[string]struct{}{},
		}

	case EventTypeTaskUpdated:
		var payload TaskUpdatePayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tasks = copyTasks(state.Tasks)
		task := state.Tasks[payload.TaskID]
		if payload.Name != nil {
			task.Name = *payload.Name
		}
		if payload.Description != nil {
			task.Description = *payload.Description
		}
		state.Tasks[payload.TaskID] = task

	case EventTypeTaskAssigned:
		var payload TaskAssignedPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tasks = copyTasks(state.Tasks)
		task := state.Tasks[payload.TaskID]
		task.AssigneeID = payload.AssigneeID
		state.Tasks[payload.TaskID] = task

	case EventTypeTaskTagAdded:
		var payload TaskTagPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tasks = copyTasks(state.Tasks)
		task := state.Tasks[payload.TaskID]
		task.TagIDs = copySet(task.TagIDs)
		task.TagIDs[payload.TagID] = struct{}{}
		state.Tasks[payload.TaskID] = task

	case EventTypeTaskDeleted:
		var payload TaskDeletedPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tasks = copyTasks(state.Tasks)
		delete(state.Tasks, payload.TaskID)
		state.DeletedTaskIDs = copySet(state.DeletedTaskIDs)
		state.DeletedTaskIDs[payload.TaskID] = struct{}{}

	case EventTypeTagCreated:
		var payload TagCreatePayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tags = copyTags(state.Tags)
		state.Tags[payload.TagID] = Tag{
			TagID:     payload.TagID,
			Name:      payload.Name,
			Color:     payload.Color,
			CreatorID: payload.CreatorID,
		}

	case EventTypeTagDeleted:
		var payload TagDeletedPayload
		if err := decodePayload(evt, &payload); err != nil {
			return state, err
		}
		state.Tags = copyTags(state.Tags)
		delete(state.Tags, payload.TagID)
		state.DeletedTagIDs = copySet(state.DeletedTagIDs)
		state.DeletedTagIDs[payload.TagID] = struct{}{}
		state.Tasks = copyTasks(state.Tasks)
		for id, task := range state.Tasks {
			if !task.HasTag(payload.TagID) {
				continue
			}
			task.TagIDs = copySet(task.TagIDs)
			delete(task.TagIDs, payload.TagID)
			state.Tasks[id] = task
		}

	default:
		return state, fmt.Errorf("%w: %s", ErrUnknownEventType, evt.Type)
	}
	return state, nil
}

func decodePayload(evt event.Event, target any) error {
	if err := json.Unmarshal(evt.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}
	return nil
}

func copySet(set map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(set)+1)
	for key := range set {
		out[key] = struct{}{}
	}
	return out
}

func copyTasks(tasks map[string]Task) map[string]Task {
	out := make(map[string]Task, len(tasks)+1)
	for id, task := range tasks {
		out[id] = task
	}
	return out
}

func copyTags(tags map[string]Tag) map[string]Tag {
	out := make(map[string]Tag, len(tags)+1)
	for id, tag := range tags {
		out[id] = tag
	}
	return out
}
