// Package id generates opaque identifiers for projects, tasks, tags, and users.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a random (version 4) UUID in its canonical string form.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return value.String(), nil
}

// Valid reports whether value is a UUID in the canonical lowercase,
// hyphenated form that NewID produces.
func Valid(value string) bool {
	parsed, err := uuid.Parse(value)
	return err == nil && parsed.String() == value
}

// Generator produces new identifiers; tests substitute deterministic ones.
type Generator func() (string, error)
