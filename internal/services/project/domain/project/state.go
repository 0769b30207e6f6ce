package project

import "sort"

// State captures the replayed aggregate state of a project.
type State struct {
	// Created is true once project.created has been folded.
	Created     bool
	ProjectID   string
	Title       string
	Description string
	CreatorID   string
	Members     map[string]struct{}
	Tasks       map[string]Task
	Tags        map[string]Tag
	// DeletedTaskIDs and DeletedTagIDs keep removed ids so they are never reused.
	DeletedTaskIDs map[string]struct{}
	DeletedTagIDs  map[string]struct{}
}

// Task is a unit of work owned by a project.
type Task struct {
	TaskID      string
	Name        string
	Description string
	AssigneeID  string
	TagIDs      map[string]struct{}
}

// Tag is a project-scoped label that can be attached to tasks.
type Tag struct {
	TagID     string
	Name      string
	Color     string
	CreatorID string
}

// IsMember reports whether userID belongs to the project.
func (s State) IsMember(userID string) bool {
	_, ok := s.Members[userID]
	return ok
}

// MemberIDs returns the member ids in lexical order.
func (s State) MemberIDs() []string {
	return sortedKeys(s.Members)
}

// Task returns the live task with the given id.
func (s State) Task(taskID string) (Task, bool) {
	task, ok := s.Tasks[taskID]
	return task, ok
}

// Tag returns the live tag with the given id.
func (s State) Tag(tagID string) (Tag, bool) {
	tag, ok := s.Tags[tagID]
	return tag, ok
}

// TaskList returns live tasks ordered by id.
func (s State) TaskList() []Task {
	tasks := make([]Task, 0, len(s.Tasks))
	for _, task := range s.Tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskID < tasks[j].TaskID })
	return tasks
}

// TagList returns live tags ordered by id.
func (s State) TagList() []Tag {
	tags := make([]Tag, 0, len(s.Tags))
	for _, tag := range s.Tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].TagID < tags[j].TagID })
	return tags
}

// taskIDUsed reports whether the id belongs to a live or deleted task.
func (s State) taskIDUsed(taskID string) bool {
	if _, ok := s.Tasks[taskID]; ok {
		return true
	}
	_, ok := s.DeletedTaskIDs[taskID]
	return ok
}

func (s State) tagIDUsed(tagID string) bool {
	if _, ok := s.Tags[tagID]; ok {
		return true
	}
	_, ok := s.DeletedTagIDs[tagID]
	return ok
}

// tasksAssignedTo returns ids of tasks assigned to userID, sorted.
func (s State) tasksAssignedTo(userID string) []string {
	var ids []string
	for id, task := range s.Tasks {
		if task.AssigneeID == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// tasksTaggedWith returns ids of tasks carrying tagID, sorted.
func (s State) tasksTaggedWith(tagID string) []string {
	var ids []string
	for id, task := range s.Tasks {
		if task.HasTag(tagID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// HasTag reports whether the task carries tagID.
func (t Task) HasTag(tagID string) bool {
	_, ok := t.TagIDs[tagID]
	return ok
}

// TagIDList returns the task's tag ids in lexical order.
func (t Task) TagIDList() []string {
	return sortedKeys(t.TagIDs)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
