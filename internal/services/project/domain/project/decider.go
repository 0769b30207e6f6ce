package project

import (
	"encoding/json"
	"time"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
)

const (
	CommandTypeCreate       command.Type = "project.create"
	CommandTypeUpdate       command.Type = "project.update"
	CommandTypeMemberAdd    command.Type = "project.member.add"
	CommandTypeMemberRemove command.Type = "project.member.remove"
	CommandTypeTaskCreate   command.Type = "task.create"
	CommandTypeTaskUpdate   command.Type = "task.update"
	CommandTypeTaskAssign   command.Type = "task.assign"
	CommandTypeTaskTagAdd   command.Type = "task.tag.add"
	CommandTypeTaskDelete   command.Type = "task.delete"
	CommandTypeTagCreate    command.Type = "tag.create"
	CommandTypeTagDelete    command.Type = "tag.delete"

	EventTypeCreated       event.Type = "project.created"
	EventTypeUpdated       event.Type = "project.updated"
	EventTypeMemberAdded   event.Type = "project.member_added"
	EventTypeMemberRemoved event.Type = "project.member_removed"
	EventTypeTaskCreated   event.Type = "task.created"
	EventTypeTaskUpdated   event.Type = "task.updated"
	EventTypeTaskAssigned  event.Type = "task.assigned"
	EventTypeTaskTagAdded  event.Type = "task.tag_added"
	EventTypeTaskDeleted   event.Type = "task.deleted"
	EventTypeTagCreated    event.Type = "tag.created"
	EventTypeTagDeleted    event.Type = "tag.deleted"

	entityTypeProject = "project"
	entityTypeMember  = "member"
	entityTypeTask    = "task"
	entityTypeTag     = "tag"
)

// Decide returns the decision for a project command against current state.
//
// Each accepted command emits exactly one event. Rejection codes are the
// platform error codes so callers can map them to an error kind directly.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	if cmd.Type == CommandTypeCreate {
		return decideCreate(state, cmd, now)
	}
	if !state.Created {
		return reject(apperrors.CodeProjectNotFound, "project not found")
	}

	switch cmd.Type {
	case CommandTypeUpdate:
		return decideUpdate(state, cmd, now)
	case CommandTypeMemberAdd:
		return decideMemberAdd(state, cmd, now)
	case CommandTypeMemberRemove:
		return decideMemberRemove(state, cmd, now)
	case CommandTypeTaskCreate:
		return decideTaskCreate(state, cmd, now)
	case CommandTypeTaskUpdate:
		return decideTaskUpdate(state, cmd, now)
	case CommandTypeTaskAssign:
		return decideTaskAssign(state, cmd, now)
	case CommandTypeTaskTagAdd:
		return decideTaskTagAdd(state, cmd, now)
	case CommandTypeTaskDelete:
		return decideTaskDelete(state, cmd, now)
	case CommandTypeTagCreate:
		return decideTagCreate(state, cmd, now)
	case CommandTypeTagDelete:
		return decideTagDelete(state, cmd, now)
	default:
		return reject(apperrors.CodeRequestInvalid, "command type is not supported")
	}
}

func decideCreate(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Created {
		return reject(apperrors.CodeProjectAlreadyExists, "project already exists")
	}
	var payload CreatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	title := normalizeText(payload.Title)
	if title == "" {
		return reject(apperrors.CodeProjectTitleEmpty, "project title is required")
	}
	creatorID := normalizeID(payload.CreatorID)
	if creatorID == "" {
		return reject(apperrors.CodeProjectCreatorRequired, "project creator is required")
	}

	return accept(cmd, EventTypeCreated, entityTypeProject, cmd.ProjectID, CreatedPayload{
		ProjectID:   cmd.ProjectID,
		Title:       title,
		Description: normalizeText(payload.Description),
		CreatorID:   creatorID,
		Members:     []string{creatorID},
	}, now)
}

func decideUpdate(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload UpdatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	var changed UpdatePayload
	if payload.Title != nil {
		title := normalizeText(*payload.Title)
		if title == "" {
			return reject(apperrors.CodeProjectTitleEmpty, "project title is required")
		}
		if title != state.Title {
			changed.Title = &title
		}
	}
	if payload.Description != nil {
		description := normalizeText(*payload.Description)
		if description != state.Description {
			changed.Description = &description
		}
	}
	if changed.Title == nil && changed.Description == nil {
		return reject(apperrors.CodeProjectUpdateNoOp, "project update changes nothing")
	}
	return accept(cmd, EventTypeUpdated, entityTypeProject, cmd.ProjectID, changed, now)
}

func decideMemberAdd(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload MemberPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	memberID := normalizeID(payload.MemberID)
	if memberID == "" {
		return reject(apperrors.CodeProjectMemberRequired, "member id is required")
	}
	if state.IsMember(memberID) {
		return reject(apperrors.CodeProjectAlreadyMember, "user is already a member")
	}
	return accept(cmd, EventTypeMemberAdded, entityTypeMember, memberID, MemberPayload{MemberID: memberID}, now)
}

func decideMemberRemove(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload MemberPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	memberID := normalizeID(payload.MemberID)
	if memberID == "" {
		return reject(apperrors.CodeProjectMemberRequired, "member id is required")
	}
	if memberID == state.CreatorID {
		return reject(apperrors.CodeProjectCannotRemoveCreator, "the project creator cannot be removed")
	}
	if !state.IsMember(memberID) {
		return reject(apperrors.CodeProjectNotAMember, "user is not a member")
	}
	return accept(cmd, EventTypeMemberRemoved, entityTypeMember, memberID, MemberRemovedPayload{
		MemberID:        memberID,
		AssignedTaskIDs: state.tasksAssignedTo(memberID),
	}, now)
}

func decideTaskCreate(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TaskCreatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	taskID := normalizeID(payload.TaskID)
	if taskID == "" {
		return reject(apperrors.CodeTaskIDRequired, "task id is required")
	}
	if state.taskIDUsed(taskID) {
		return reject(apperrors.CodeTaskAlreadyExists, "task id already used")
	}
	name := normalizeText(payload.Name)
	if name == "" {
		return reject(apperrors.CodeTaskNameEmpty, "task name is required")
	}
	return accept(cmd, EventTypeTaskCreated, entityTypeTask, taskID, TaskCreatePayload{
		TaskID:      taskID,
		Name:        name,
		Description: normalizeText(payload.Description),
	}, now)
}

func decideTaskUpdate(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TaskUpdatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	task, rejection, ok := requireTask(state, payload.TaskID)
	if !ok {
		return rejection
	}
	changed := TaskUpdatePayload{TaskID: task.TaskID}
	if payload.Name != nil {
		name := normalizeText(*payload.Name)
		if name == "" {
			return reject(apperrors.CodeTaskNameEmpty, "task name is required")
		}
		if name != task.Name {
			changed.Name = &name
		}
	}
	if payload.Description != nil {
		description := normalizeText(*payload.Description)
		if description != task.Description {
			changed.Description = &description
		}
	}
	if changed.Name == nil && changed.Description == nil {
		return reject(apperrors.CodeTaskUpdateNoOp, "task update changes nothing")
	}
	return accept(cmd, EventTypeTaskUpdated, entityTypeTask, task.TaskID, changed, now)
}

func decideTaskAssign(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TaskAssignPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	task, rejection, ok := requireTask(state, payload.TaskID)
	if !ok {
		return rejection
	}
	assigneeID := normalizeID(payload.AssigneeID)
	if assigneeID == "" {
		return reject(apperrors.CodeTaskAssigneeRequired, "assignee id is required")
	}
	return accept(cmd, EventTypeTaskAssigned, entityTypeTask, task.TaskID, TaskAssignedPayload{
		TaskID:             task.TaskID,
		AssigneeID:         assigneeID,
		PreviousAssigneeID: task.AssigneeID,
	}, now)
}

func decideTaskTagAdd(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TaskTagPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	task, rejection, ok := requireTask(state, payload.TaskID)
	if !ok {
		return rejection
	}
	tag, rejection, ok := requireTag(state, payload.TagID)
	if !ok {
		return rejection
	}
	return accept(cmd, EventTypeTaskTagAdded, entityTypeTask, task.TaskID, TaskTagPayload{
		TaskID: task.TaskID,
		TagID:  tag.TagID,
	}, now)
}

func decideTaskDelete(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TaskDeletePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	task, rejection, ok := requireTask(state, payload.TaskID)
	if !ok {
		return rejection
	}
	return accept(cmd, EventTypeTaskDeleted, entityTypeTask, task.TaskID, TaskDeletedPayload{
		TaskID: task.TaskID,
		Name:   task.Name,
	}, now)
}

func decideTagCreate(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TagCreatePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	tagID := normalizeID(payload.TagID)
	if tagID == "" {
		return reject(apperrors.CodeTagIDRequired, "tag id is required")
	}
	if state.tagIDUsed(tagID) {
		return reject(apperrors.CodeTagAlreadyExists, "tag id already used")
	}
	name := normalizeText(payload.Name)
	if name == "" {
		return reject(apperrors.CodeTagNameEmpty, "tag name is required")
	}
	creatorID := normalizeID(payload.CreatorID)
	if creatorID == "" {
		return reject(apperrors.CodeTagCreatorRequired, "tag creator is required")
	}
	return accept(cmd, EventTypeTagCreated, entityTypeTag, tagID, TagCreatePayload{
		TagID:     tagID,
		Name:      name,
		Color:     normalizeText(payload.Color),
		CreatorID: creatorID,
	}, now)
}

func decideTagDelete(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TagDeletePayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return rejectPayload(err)
	}
	tag, rejection, ok := requireTag(state, payload.TagID)
	if !ok {
		return rejection
	}
	return accept(cmd, EventTypeTagDeleted, entityTypeTag, tag.TagID, TagDeletedPayload{
		TagID:           tag.TagID,
		Name:            tag.Name,
		DetachedTaskIDs: state.tasksTaggedWith(tag.TagID),
	}, now)
}

func requireTask(state State, rawID string) (Task, command.Decision, bool) {
	taskID := normalizeID(rawID)
	if taskID == "" {
		return Task{}, reject(apperrors.CodeTaskIDRequired, "task id is required"), false
	}
	task, ok := state.Task(taskID)
	if !ok {
		return Task{}, reject(apperrors.CodeTaskNotFound, "task not found"), false
	}
	return task, command.Decision{}, true
}

func requireTag(state State, rawID string) (Tag, command.Decision, bool) {
	tagID := normalizeID(rawID)
	if tagID == "" {
		return Tag{}, reject(apperrors.CodeTagIDRequired, "tag id is required"), false
	}
	tag, ok := state.Tag(tagID)
	if !ok {
		return Tag{}, reject(apperrors.CodeTagNotFound, "tag not found"), false
	}
	return tag, command.Decision{}, true
}

func accept(cmd command.Command, eventType event.Type, entityType, entityID string, payload any, now func() time.Time) command.Decision {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return reject(apperrors.CodeInternal, "encode event payload")
	}
	return command.Accept(command.NewEvent(cmd, eventType, entityType, entityID, payloadJSON, now().UTC()))
}

func reject(code apperrors.Code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: string(code), Message: message})
}

func rejectPayload(err error) command.Decision {
	return reject(apperrors.CodeRequestInvalid, "decode command payload: "+err.Error())
}
