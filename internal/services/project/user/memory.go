package user

import (
	"context"
	"sync"
)

// MemoryDirectory is a mutex-guarded in-memory Store.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]State
}

// NewMemoryDirectory returns an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]State)}
}

// GetUser returns the user or ErrNotFound.
func (d *MemoryDirectory) GetUser(_ context.Context, userID string) (State, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return State{}, ErrNotFound
	}
	return u, nil
}

// PutUser registers a user or returns ErrAlreadyExists.
func (d *MemoryDirectory) PutUser(_ context.Context, u State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.UserID]; ok {
		return ErrAlreadyExists
	}
	d.users[u.UserID] = u
	return nil
}
