// Package httpapi exposes the project service over JSON/HTTP.
//
// Handlers translate requests into project commands, check user existence
// before dispatch, and render aggregate state read back from the journal.
// Ids in paths and queries are trimmed and must be canonical UUIDs.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/id"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/project/domain/command"
	"github.com/louisbranch/taskboard/internal/services/project/domain/engine"
	"github.com/louisbranch/taskboard/internal/services/project/domain/event"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

const maxBodyBytes = 1 << 20

// Projects runs commands against project streams and loads their state.
// engine.Handler satisfies it.
type Projects interface {
	Create(ctx context.Context, cmd command.Command) (engine.Result, error)
	Update(ctx context.Context, cmd command.Command) (engine.Result, error)
	LoadExisting(ctx context.Context, projectID string) (project.State, error)
}

// EventLister pages through a project stream.
type EventLister interface {
	ListEvents(ctx context.Context, projectID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// ProjectIndex enumerates every project with a stream.
type ProjectIndex interface {
	ListProjectIDs(ctx context.Context) ([]string, error)
}

// Config wires the server dependencies.
type Config struct {
	Projects    Projects
	Events      EventLister
	Index       ProjectIndex
	Users       user.Store
	NewID       id.Generator
	Now         func() time.Time
	Logger      *slog.Logger
	CORSOrigins []string
}

// Server implements the project HTTP routes.
type Server struct {
	projects Projects
	events   EventLister
	index    ProjectIndex
	users    user.Store
	newID    id.Generator
	now      func() time.Time
	logger   *slog.Logger
	origins  []string
}

// NewServer builds a Server, filling defaults for ids, clock and logger.
func NewServer(cfg Config) *Server {
	s := &Server{
		projects: cfg.Projects,
		events:   cfg.Events,
		index:    cfg.Index,
		users:    cfg.Users,
		newID:    cfg.NewID,
		now:      cfg.Now,
		logger:   cfg.Logger,
		origins:  cfg.CORSOrigins,
	}
	if s.newID == nil {
		s.newID = id.NewID
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the router with the request middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(NewSlogLogger(s.logger))
	r.Use(ActorFromHeader)
	r.Use(chimiddleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(NewCORSHandler(s.origins))
	}

	r.Get("/healthz", s.healthz)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.createUser)
		r.Get("/{userId}", s.getUser)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", s.createProject)
		r.Get("/all_projects", s.listProjects)
		r.Route("/{projectId}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Patch("/", s.updateProject)
			r.Get("/project_creator", s.getProjectCreator)
			r.Get("/events", s.listEvents)

			r.Get("/participants", s.listParticipants)
			r.Post("/participants/{participantId}", s.addParticipant)
			r.Delete("/participants/{participantId}", s.removeParticipant)

			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.createTask)
			r.Get("/tasks/{taskId}", s.getTask)
			r.Patch("/tasks/{taskId}", s.updateTask)
			r.Delete("/tasks/{taskId}", s.deleteTask)
			r.Get("/tasks/{taskId}/assignee", s.getTaskAssignee)
			r.Get("/tasks/{taskId}/tags", s.listTaskTags)
			r.Post("/tasks/{taskId}/assignTo/{assigneeId}", s.assignTask)
			r.Post("/tasks/{taskId}/addTag/{tagId}", s.addTagToTask)

			r.Get("/tags", s.listTags)
			r.Post("/tags", s.createTag)
			r.Get("/tags/{tagId}", s.getTag)
			r.Delete("/tags/{tagId}", s.deleteTag)
		})
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// newCommand fills the envelope shared by every command issued from a request.
func (s *Server) newCommand(r *http.Request, projectID string, cmdType command.Type, payload any) (command.Command, error) {
	payloadJSON, err := encodePayload(payload)
	if err != nil {
		return command.Command{}, err
	}
	return command.Command{
		ProjectID:   projectID,
		Type:        cmdType,
		ActorID:     requestctx.ActorIDFromContext(r.Context()),
		RequestID:   chimiddleware.GetReqID(r.Context()),
		PayloadJSON: payloadJSON,
	}, nil
}

// update issues a command against an existing project and writes the event.
func (s *Server) update(w http.ResponseWriter, r *http.Request, cmdType command.Type, payload any) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := s.newCommand(r, projectID, cmdType, payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.projects.Update(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(result.Event))
}

// pathIDs resolves the named URL params as ids, in order. It writes the error
// response itself and reports whether to continue.
func (s *Server) pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		value, err := pathID(r, name)
		if err != nil {
			s.writeError(w, r, err)
			return nil, false
		}
		ids = append(ids, value)
	}
	return ids, true
}

func pathID(r *http.Request, name string) (string, error) {
	return parseID(name, chi.URLParam(r, name))
}

// parseID trims raw and requires the canonical UUID form ids are issued in.
func parseID(name, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", apperrors.WithMetadata(apperrors.CodeRequestInvalid, name+" is required", map[string]string{
			"param": name,
		})
	}
	if !id.Valid(value) {
		return "", apperrors.WithMetadata(apperrors.CodeRequestInvalid, name+" must be a UUID", map[string]string{
			"param": name,
			"value": raw,
		})
	}
	return value, nil
}
