package project

// CreatePayload captures the payload for project.create commands.
// The project id comes from the command envelope.
type CreatePayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatorID   string `json:"creator_id"`
}

// CreatedPayload captures the payload for project.created events.
type CreatedPayload struct {
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CreatorID   string   `json:"creator_id"`
	Members     []string `json:"members"`
}

// UpdatePayload captures the payload for project.update commands and
// project.updated events. Nil fields are left unchanged.
type UpdatePayload struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MemberPayload captures the payload for project.member.add and
// project.member.remove commands and project.member_added events.
type MemberPayload struct {
	MemberID string `json:"member_id"`
}

// MemberRemovedPayload captures the payload for project.member_removed events.
// AssignedTaskIDs lists tasks still assigned to the removed member.
type MemberRemovedPayload struct {
	MemberID        string   `json:"member_id"`
	AssignedTaskIDs []string `json:"assigned_task_ids,omitempty"`
}

// TaskCreatePayload captures the payload for task.create commands and
// task.created events.
type TaskCreatePayload struct {
	TaskID      string `json:"task_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaskUpdatePayload captures the payload for task.update commands and
// task.updated events. Nil fields are left unchanged.
type TaskUpdatePayload struct {
	TaskID      string  `json:"task_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TaskAssignPayload captures the payload for task.assign commands.
type TaskAssignPayload struct {
	TaskID     string `json:"task_id"`
	AssigneeID string `json:"assignee_id"`
}

// TaskAssignedPayload captures the payload for task.assigned events.
type TaskAssignedPayload struct {
	TaskID             string `json:"task_id"`
	AssigneeID         string `json:"assignee_id"`
	PreviousAssigneeID string `json:"previous_assignee_id,omitempty"`
}

// TaskTagPayload captures the payload for task.tag.add commands and
// task.tag_added events.
type TaskTagPayload struct {
	TaskID string `json:"task_id"`
	TagID  string `json:"tag_id"`
}

// TaskDeletePayload captures the payload for task.delete commands.
type TaskDeletePayload struct {
	TaskID string `json:"task_id"`
}

// TaskDeletedPayload captures the payload for task.deleted events.
type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
	Name   string `json:"name"`
}

// TagCreatePayload captures the payload for tag.create commands and
// tag.created events.
type TagCreatePayload struct {
	TagID     string `json:"tag_id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatorID string `json:"creator_id"`
}

// TagDeletePayload captures the payload for tag.delete commands.
type TagDeletePayload struct {
	TagID string `json:"tag_id"`
}

// TagDeletedPayload captures the payload for tag.deleted events.
// DetachedTaskIDs lists, in order, the tasks the tag was removed from.
type TagDeletedPayload struct {
	TagID           string   `json:"tag_id"`
	Name            string   `json:"name"`
	DetachedTaskIDs []string `json:"detached_task_ids,omitempty"`
}
