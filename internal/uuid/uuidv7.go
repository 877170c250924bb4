// Package uuid generates the time-ordered identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a new UUIDv7 string.
//
// UUIDv7 values are ordered by creation time within a process, so sorting by
// id reproduces insertion order. That property is what restore relies on when
// it replays records and hands out fresh keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy failure; a v4 id still keeps inserts working.
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalizes a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
