package httpapi

import (
	"errors"
	"net/http"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/project/user"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name string `json:"name"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := s.newID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := user.New(userID, req.Name, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.PutUser(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			err = apperrors.Wrap(apperrors.CodeConcurrencyConflict, "user id already registered", err)
		}
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/users/"+u.UserID)
	writeJSON(w, http.StatusCreated, newUserView(u))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.pathIDs(w, r, "userId")
	if !ok {
		return
	}
	u, err := user.Require(r.Context(), s.users, ids[0])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(u))
}
