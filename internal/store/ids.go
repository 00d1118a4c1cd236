package store

import "github.com/google/uuid"

// newID returns a random (v4) UUID string.
func newID() string {
	return uuid.NewString()
}
