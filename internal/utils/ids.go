package utils

import (
	"github.com/google/uuid"
)

// NewID returns a new random (v4) uuid
func NewID() string {
	return uuid.NewString()
}

// IsValidID returns true if the given string parses as a uuid
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
