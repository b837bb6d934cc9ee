package parclust

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension is matched by every DimensionError.
	ErrDimension = errors.New("parclust: dimension mismatch")

	// ErrSchedulingRejected is returned when an Executor refuses new work,
	// for example after it has been closed.
	ErrSchedulingRejected = errors.New("parclust: scheduling rejected")
)

// A DimensionError reports input shapes that violate the precondition of an
// operation. It is always returned before any task is scheduled.
type DimensionError struct {
	Op     string
	Reason string
}

// NewDimensionError returns a DimensionError for op with a formatted reason.
func NewDimensionError(op, format string, args ...interface{}) error {
	return &DimensionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *DimensionError) Error() string {
	if e.Op == "" {
		return "parclust: " + e.Reason
	}
	return "parclust: " + e.Op + ": " + e.Reason
}

// Is reports whether target is ErrDimension.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimension
}
