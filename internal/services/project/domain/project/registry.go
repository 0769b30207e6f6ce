package project

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
)

// RegisterCommands registers project commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeCreate, ValidatePayload: decodeOnly[CreatePayload]},
		{Type: CommandTypeUpdate, ValidatePayload: decodeOnly[UpdatePayload]},
		{Type: CommandTypeMemberAdd, ValidatePayload: decodeOnly[MemberPayload]},
		{Type: CommandTypeMemberRemove, ValidatePayload: decodeOnly[MemberPayload]},
		{Type: CommandTypeTaskCreate, ValidatePayload: decodeOnly[TaskCreatePayload]},
		{Type: CommandTypeTaskUpdate, ValidatePayload: decodeOnly[TaskUpdatePayload]},
		{Type: CommandTypeTaskAssign, ValidatePayload: decodeOnly[TaskAssignPayload]},
		{Type: CommandTypeTaskTagAdd, ValidatePayload: decodeOnly[TaskTagPayload]},
		{Type: CommandTypeTaskDelete, ValidatePayload: decodeOnly[TaskDeletePayload]},
		{Type: CommandTypeTagCreate, ValidatePayload: decodeOnly[TagCreatePayload]},
		{Type: CommandTypeTagDelete, ValidatePayload: decodeOnly[TagDeletePayload]},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the project decider can emit.
func EmittableEventTypes() []event.Type {
	return FoldHandledTypes()
}

// RegisterEvents registers project events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeCreated, ValidatePayload: validateCreatedPayload},
		{Type: EventTypeUpdated, ValidatePayload: decodeOnly[UpdatePayload]},
		{Type: EventTypeMemberAdded, ValidatePayload: validateMemberPayload},
		{Type: EventTypeMemberRemoved, ValidatePayload: validateMemberRemovedPayload},
		{Type: EventTypeTaskCreated, ValidatePayload: validateTaskCreatedPayload},
		{Type: EventTypeTaskUpdated, ValidatePayload: validateTaskUpdatedPayload},
		{Type: EventTypeTaskAssigned, ValidatePayload: validateTaskAssignedPayload},
		{Type: EventTypeTaskTagAdded, ValidatePayload: validateTaskTagPayload},
		{Type: EventTypeTaskDeleted, ValidatePayload: validateTaskDeletedPayload},
		{Type: EventTypeTagCreated, ValidatePayload: validateTagCreatedPayload},
		{Type: EventTypeTagDeleted, ValidatePayload: validateTagDeletedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func decodeOnly[T any](raw json.RawMessage) error {
	var payload T
	return json.Unmarshal(raw, &payload)
}

func validateCreatedPayload(raw json.RawMessage) error {
	var payload CreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if err := requireFields(map[string]string{
		"project_id": payload.ProjectID,
		"title":      payload.Title,
		"creator_id": payload.CreatorID,
	}); err != nil {
		return err
	}
	for _, member := range payload.Members {
		if member == payload.CreatorID {
			return nil
		}
	}
	return errors.New("members must include the creator")
}

func validateMemberPayload(raw json.RawMessage) error {
	var payload MemberPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"member_id": payload.MemberID})
}

func validateMemberRemovedPayload(raw json.RawMessage) error {
	var payload MemberRemovedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"member_id": payload.MemberID})
}

func validateTaskCreatedPayload(raw json.RawMessage) error {
	var payload TaskCreatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"task_id": payload.TaskID, "name": payload.Name})
}

func validateTaskUpdatedPayload(raw json.RawMessage) error {
	var payload TaskUpdatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if err := requireFields(map[string]string{"task_id": payload.TaskID}); err != nil {
		return err
	}
	if payload.Name != nil && strings.TrimSpace(*payload.Name) == "" {
		return errors.New("name must not be empty")
	}
	return nil
}

func validateTaskAssignedPayload(raw json.RawMessage) error {
	var payload TaskAssignedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"task_id": payload.TaskID, "assignee_id": payload.AssigneeID})
}

func validateTaskTagPayload(raw json.RawMessage) error {
	var payload TaskTagPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"task_id": payload.TaskID, "tag_id": payload.TagID})
}

func validateTaskDeletedPayload(raw json.RawMessage) error {
	var payload TaskDeletedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"task_id": payload.TaskID})
}

func validateTagCreatedPayload(raw json.RawMessage) error {
	var payload TagCreatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{
		"tag_id":     payload.TagID,
		"name":       payload.Name,
		"creator_id": payload.CreatorID,
	})
}

func validateTagDeletedPayload(raw json.RawMessage) error {
	var payload TagDeletedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return requireFields(map[string]string{"tag_id": payload.TagID})
}

// requireFields reports the first empty field in lexical order so errors are stable.
func requireFields(fields map[string]string) error {
	for _, name := range sortedFieldNames(fields) {
		if strings.TrimSpace(fields[name]) == "" {
			return errors.New(name + " is required")
		}
	}
	return nil
}

func sortedFieldNames(fields map[string]string) []string {
	set := make(map[string]struct{}, len(fields))
	for name := range fields {
		set[name] = struct{}{}
	}
	return sortedKeys(set)
}
