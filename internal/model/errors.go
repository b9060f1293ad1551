package model

import "fmt"

// NotFoundError indicates the catalog has no field configuration with the
// given ID. Surfaced to the caller; never swallowed.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("field config %d not found", e.ID)
}

// ScriptInvalidError indicates the script parser rejected a body. The
// parser's message is carried verbatim.
type ScriptInvalidError struct {
	Field   string
	Message string
}

func (e *ScriptInvalidError) Error() string {
	return fmt.Sprintf("%s: invalid script: %s", e.Field, e.Message)
}

// RequiredFieldError indicates a required form field was empty.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return e.Field + ": is required"
}

// FieldTooLongError indicates a form field exceeded its maximum length.
type FieldTooLongError struct {
	Field string
	Max   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("%s: must be %d characters or fewer", e.Field, e.Max)
}

// ConflictError indicates a create raced with another create for the same
// config ID. The caller may retry as an update.
type ConflictError struct {
	ID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("field config %d already exists", e.ID)
}

// StorageError wraps a durable-store failure that occurred after validation
// passed. Earlier steps of the same update are not rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
