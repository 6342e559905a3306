package domain

import "github.com/google/uuid"

// NewID mints a new unique identifier for a durable entity.
func NewID() string {
	return uuid.NewString()
}
