// Package user holds the user records the project API checks before dispatching
// commands. Users live outside the Project aggregate.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
)

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists indicates a user id is already registered.
	ErrAlreadyExists = errors.New("user already exists")
)

// State is the registered user record.
type State struct {
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Directory looks up users by id.
type Directory interface {
	GetUser(ctx context.Context, userID string) (State, error)
}

// Store registers and looks up users.
type Store interface {
	Directory
	PutUser(ctx context.Context, u State) error
}

// New validates and normalizes a user record.
func New(userID, name string, now time.Time) (State, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return State{}, apperrors.New(apperrors.CodeRequestInvalid, "user id is required")
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return State{}, apperrors.New(apperrors.CodeUserNameEmpty, "user name is required")
	}
	return State{UserID: userID, Name: name, CreatedAt: now.UTC()}, nil
}

// Require returns the user or a not-found domain error naming the id.
func Require(ctx context.Context, directory Directory, userID string) (State, error) {
	u, err := directory.GetUser(ctx, strings.TrimSpace(userID))
	if errors.Is(err, ErrNotFound) {
		return State{}, apperrors.WithMetadata(apperrors.CodeUserNotFound, "user not found", map[string]string{"user_id": userID})
	}
	if err != nil {
		return State{}, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}
	return u, nil
}
