package core

import "github.com/google/uuid"

// NewUniqueID returns a random identifier for entities and chunks.
func NewUniqueID() string {
	return uuid.NewString()
}

