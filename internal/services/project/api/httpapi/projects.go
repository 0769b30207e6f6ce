package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

const (
	defaultEventPageSize = 100
	maxEventPageSize     = 1000
)

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	ProjectTitle string `json:"projectTitle"`
	Description  string `json:"description"`
}

// UpdateProjectRequest is the body of PATCH /projects/{projectId}.
// Omitted fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	creatorID, err := s.requireUser(r, "creatorId", r.URL.Query().Get("creatorId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projectID, err := s.newID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := s.newCommand(r, projectID, project.CommandTypeCreate, project.CreatePayload{
		Title:       req.ProjectTitle,
		Description: req.Description,
		CreatorID:   creatorID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.projects.Create(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/projects/"+projectID)
	writeJSON(w, http.StatusCreated, newEventView(result.Event))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeUpdate, project.UpdatePayload{
		Title:       req.Title,
		Description: req.Description,
	})
}

func (s *Server) addParticipant(w http.ResponseWriter, r *http.Request) {
	participantID, err := s.requireUser(r, "participantId", chi.URLParam(r, "participantId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeMemberAdd, project.MemberPayload{MemberID: participantID})
}

func (s *Server) removeParticipant(w http.ResponseWriter, r *http.Request) {
	participantID, err := s.requireUser(r, "participantId", chi.URLParam(r, "participantId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeMemberRemove, project.MemberPayload{MemberID: participantID})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(state))
}

// listProjects folds every project in the index, in index order.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projectIDs, err := s.index.ListProjectIDs(r.Context())
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.CodeInternal, "list projects", err))
		return
	}
	views := make([]ProjectView, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		state, err := s.projects.LoadExisting(r.Context(), projectID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views = append(views, newProjectView(state))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	members := state.MemberIDs()
	views := make([]UserView, 0, len(members))
	for _, memberID := range members {
		view, err := s.lookupUser(r, memberID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getProjectCreator(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	view, err := s.lookupUser(r, state.CreatorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// listEvents pages the raw stream: ?after=<seq>&limit=<n>.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	afterSeq, err := parseUintParam(query.Get("after"), 0)
	if err != nil {
		s.writeError(w, r, apperrors.New(apperrors.CodeRequestInvalid, "after must be a non-negative integer"))
		return
	}
	limit, err := parseUintParam(query.Get("limit"), defaultEventPageSize)
	if err != nil || limit == 0 {
		s.writeError(w, r, apperrors.New(apperrors.CodeRequestInvalid, "limit must be a positive integer"))
		return
	}
	if limit > maxEventPageSize {
		limit = maxEventPageSize
	}
	events, err := s.events.ListEvents(r.Context(), state.ProjectID, afterSeq, int(limit))
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.CodeInternal, "list events", err))
		return
	}
	views := make([]EventView, 0, len(events))
	for _, evt := range events {
		views = append(views, newEventView(evt))
	}
	writeJSON(w, http.StatusOK, views)
}

// loadProject writes the error response itself and reports whether to continue.
func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) (project.State, bool) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return project.State{}, false
	}
	state, err := s.projects.LoadExisting(r.Context(), projectID)
	if err != nil {
		s.writeError(w, r, err)
		return project.State{}, false
	}
	return state, true
}

// requireUser parses the id named by param and checks the user is registered.
// The trimmed id it returns is what goes into the command payload.
func (s *Server) requireUser(r *http.Request, param, raw string) (string, error) {
	userID, err := parseID(param, raw)
	if err != nil {
		return "", err
	}
	if _, err := user.Require(r.Context(), s.users, userID); err != nil {
		return "", err
	}
	return userID, nil
}

// lookupUser renders a member id, keeping ids whose user record is missing.
func (s *Server) lookupUser(r *http.Request, userID string) (UserView, error) {
	u, err := s.users.GetUser(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		return UserView{ID: userID}, nil
	}
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}
	return newUserView(u), nil
}

func parseUintParam(raw string, fallback uint64) (uint64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
