package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewEmployeeNumber returns a human-readable business id. It is derived
// from a UUID rather than a timestamp so concurrent creates cannot
// collide; the column's unique constraint backs it up.
func NewEmployeeNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EMP-" + strings.ToUpper(raw[:8])
}

// ValidID reports whether a caller-supplied id can be bound to a uuid
// column. Empty or malformed ids are treated as "record not found"
// rather than surfacing a driver encode error.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
