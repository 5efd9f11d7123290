package taxonomy

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	// ErrMalformedRecord is matched by every MalformedRecordError
	ErrMalformedRecord = errors.New("malformed taxonomy record")
	// ErrNotFound is matched by every NotFoundError
	ErrNotFound = errors.New("field not found")
)

// MalformedRecordError reports a record that cannot be loaded into the index
type MalformedRecordError struct {
	Position int    // zero-based position of the record in the load sequence
	FieldID  string // may be empty when the ID itself is missing
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("malformed taxonomy record at position %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("malformed taxonomy record %s at position %d: %s", e.FieldID, e.Position, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedRecord) match
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NotFoundError reports a lookup of a field ID the index does not hold
type NotFoundError struct {
	FieldID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("field %s not found in taxonomy", e.FieldID)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
