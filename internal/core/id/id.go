// Package id provides UUIDv7 generation for all records.
// UUIDv7 is time-ordered, so primary keys sort by creation time.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7, falling back to v4 if the clock read fails.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse parses a UUID string.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on error. Constants and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether v is the zero UUID.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// ParseOptional returns nil for an empty string.
func ParseOptional(s string) (*ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseList parses every element, reporting the first invalid one.
func ParseList(values []string) ([]ID, error) {
	out := make([]ID, 0, len(values))
	for _, s := range values {
		v, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}
