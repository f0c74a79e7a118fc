package interval

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid interval")
	// ErrDuplicateID matches every *DuplicateIDError via errors.Is.
	ErrDuplicateID = errors.New("duplicate interval id")
)

// ValidationError reports a malformed interval. Field names use the public
// attribute names (startTime, endTime, labelText, color, editable).
type ValidationError struct {
	Op         string // "add" or "update"
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("intervals.%s(): %s %s", e.Op, e.Field, e.Constraint)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateIDError reports an add whose id is already live, or repeated
// within the same batch.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("intervals.add(): duplicate id %q", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}
