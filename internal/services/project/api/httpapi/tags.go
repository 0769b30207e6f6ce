package httpapi

import (
	"net/http"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/domain/project"
)

// CreateTagRequest is the body of POST /projects/{projectId}/tags.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	creatorID, err := s.requireUser(r, "creatorId", r.URL.Query().Get("creatorId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tagID, err := s.newID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.update(w, r, project.CommandTypeTagCreate, project.TagCreatePayload{
		TagID:     tagID,
		Name:      req.Name,
		Color:     req.Color,
		CreatorID: creatorID,
	})
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "tagId")
	if !ok {
		return
	}
	s.update(w, r, project.CommandTypeTagDelete, project.TagDeletePayload{
		TagID: ids[0],
	})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	tags := state.TagList()
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, newTagView(tag))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "tagId")
	if !ok {
		return
	}
	state, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	tag, found := state.Tag(ids[0])
	if !found {
		s.writeError(w, r, apperrors.WithMetadata(apperrors.CodeTagNotFound, "tag not found", map[string]string{
			"project_id": state.ProjectID,
			"tag_id":     ids[0],
		}))
		return
	}
	writeJSON(w, http.StatusOK, newTagView(tag))
}
