package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrEmailTaken          = errors.New("email already in use")
	ErrDepartmentNameTaken = errors.New("department name already in use")
	ErrDepartmentInUse     = errors.New("department has assigned employees")
	ErrPositionInUse       = errors.New("role has assigned employees")
)

// ReferenceError reports a payload field whose referenced record does not
// resolve. Handlers surface it as a validation failure, not an internal one.
type ReferenceError struct {
	Field string
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: referenced record %s does not exist", e.Field, e.ID)
}
