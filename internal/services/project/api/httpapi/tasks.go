package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
)

// CreateTaskRequest is the body of POST /projects/{projectId}/tasks.
type CreateTaskRequest struct {
	TaskName        string `json:"taskName"`
	TaskDescription string `json:"taskDescription"`
}

// UpdateTaskRequest is the body of PATCH /projects/{projectId}/tasks/{taskId}.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	TaskName        *string `json:"taskName"`
	TaskDescription *string `json:"taskDescription"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	taskID, err := s.newID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeTaskCreate, project.TaskCreatePayload{
		TaskID:      taskID,
		Name:        req.TaskName,
		Description: req.TaskDescription,
	})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "taskId")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeTaskUpdate, project.TaskUpdatePayload{
		TaskID:      ids[0],
		Name:        req.TaskName,
		Description: req.TaskDescription,
	})
}

// assignTask requires the assignee to be a registered user and a current
// project member before dispatching.
func (s *Server) assignTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "taskId")
	if !ok {
		return
	}
	assigneeID, err := s.requireUser(r, "assigneeId", chi.URLParam(r, "assigneeId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	if !state.IsMember(assigneeID) {
		s.writeError(w, r, apperrors.WithMetadata(apperrors.CodeTaskAssigneeNotMember, "assignee is not a project member", map[string]string{
			"project_id":  state.ProjectID,
			"assignee_id": assigneeID,
		}))
		return
	}
	s.update(w, r, project.CommandTypeTaskAssign, project.TaskAssignPayload{
		TaskID:     ids[0],
		AssigneeID: assigneeID,
	})
}

func (s *Server) addTagToTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "taskId", "tagId")
	if !ok {
		return
	}
	s.update(w, r, project.CommandTypeTaskTagAdd, project.TaskTagPayload{
		TaskID: ids[0],
		TagID:  ids[1],
	})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "taskId")
	if !ok {
		return
	}
	s.update(w, r, project.CommandTypeTaskDelete, project.TaskDeletePayload{
		TaskID: ids[0],
	})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	tasks := state.TaskList()
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, newTaskView(task))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	_, task, ok := s.loadTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newTaskView(task))
}

// getTaskAssignee writes the assignee as a user, or null while unassigned.
func (s *Server) getTaskAssignee(w http.ResponseWriter, r *http.Request) {
	_, task, ok := s.loadTask(w, r)
	if !ok {
		return
	}
	if task.AssigneeID == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	view, err := s.lookupUser(r, task.AssigneeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) listTaskTags(w http.ResponseWriter, r *http.Request) {
	state, task, ok := s.loadTask(w, r)
	if !ok {
		return
	}
	tagIDs := task.TagIDList()
	views := make([]TagView, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if tag, found := state.Tag(tagID); found {
			views = append(views, newTagView(tag))
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// loadTask resolves the project and the task named in the path. It writes the
// error response itself and reports whether to continue.
func (s *Server) loadTask(w http.ResponseWriter, r *http.Request) (project.State, project.Task, bool) {
	ids, ok := s.pathIDs(w, r, "taskId")
	if !ok {
		return project.State{}, project.Task{}, false
	}
	state, ok := s.loadProject(w, r)
	if !ok {
		return project.State{}, project.Task{}, false
	}
	task, found := state.Task(ids[0])
	if !found {
		s.writeError(w, r, apperrors.WithMetadata(apperrors.CodeTaskNotFound, "task not found", map[string]string{
			"project_id": state.ProjectID,
			"task_id":    ids[0],
		}))
		return project.State{}, project.Task{}, false
	}
	return state, task, true
}
