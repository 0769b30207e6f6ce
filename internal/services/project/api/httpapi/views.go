package httpapi

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// EventView is the wire form of a persisted event.
type EventView struct {
	ProjectID  string          `json:"project_id"`
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
	Hash       string          `json:"hash"`
	PrevHash   string          `json:"prev_hash,omitempty"`
	ChainHash  string          `json:"chain_hash"`
}

func newEventView(evt event.Event) EventView {
	return EventView{
		ProjectID:  evt.ProjectID,
		Seq:        evt.Seq,
		Type:       string(evt.Type),
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		ActorID:    evt.ActorID,
		RequestID:  evt.RequestID,
		Timestamp:  evt.Timestamp.UTC(),
		Payload:    json.RawMessage(evt.PayloadJSON),
		Hash:       evt.Hash,
		PrevHash:   evt.PrevHash,
		ChainHash:  evt.ChainHash,
	}
}

// ProjectView summarizes a project.
type ProjectView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CreatorID   string   `json:"creator_id"`
	Members     []string `json:"members"`
	TaskCount   int      `json:"task_count"`
	TagCount    int      `json:"tag_count"`
}

func newProjectView(state project.State) ProjectView {
	return ProjectView{
		ID:          state.ProjectID,
		Title:       state.Title,
		Description: state.Description,
		CreatorID:   state.CreatorID,
		Members:     state.MemberIDs(),
		TaskCount:   len(state.Tasks),
		TagCount:    len(state.Tags),
	}
}

// TaskView is a task inside a project.
type TaskView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	TagIDs      []string `json:"tag_ids"`
}

func newTaskView(task project.Task) TaskView {
	return TaskView{
		ID:          task.TaskID,
		Name:        task.Name,
		Description: task.Description,
		AssigneeID:  task.AssigneeID,
		TagIDs:      task.TagIDList(),
	}
}

// TagView is a tag defined in a project.
type TagView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatorID string `json:"creator_id"`
}

func newTagView(tag project.Tag) TagView {
	return TagView{ID: tag.TagID, Name: tag.Name, Color: tag.Color, CreatorID: tag.CreatorID}
}

// UserView is a registered user. Name is empty for member ids whose user
// record is unknown to the directory.
type UserView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func newUserView(u user.State) UserView {
	created := u.CreatedAt.UTC()
	return UserView{ID: u.UserID, Name: u.Name, CreatedAt: &created}
}
