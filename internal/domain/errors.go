package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensionChoice rejects a slice plan whose X and Y axes name
// the same dimension. It is returned before any plan is created.
var ErrInvalidDimensionChoice = errors.New("x and y axes must be different dimensions")

// ErrCoordinatesNotFound is returned by ResolveCoords when no longitude or
// latitude coordinate could be identified for a variable.
var ErrCoordinatesNotFound = errors.New("could not locate longitude/latitude coordinates")

// FailureReason discriminates the ways a render can fail.
type FailureReason int

const (
	// ShapeMismatch: the sliced data does not reduce to exactly two
	// axes of length greater than one.
	ShapeMismatch FailureReason = iota + 1

	// AxisMismatch: the two free axes cannot be reconciled with the
	// coordinate array lengths, even allowing a transpose.
	AxisMismatch

	// MissingCoordinates: one of the chosen axis dimensions has no
	// coordinate variable in the dataset.
	MissingCoordinates
)

// String returns the reason name used in messages and logs.
func (r FailureReason) String() string {
	switch r {
	case ShapeMismatch:
		return "shape mismatch"
	case AxisMismatch:
		return "axis mismatch"
	case MissingCoordinates:
		return "missing coordinates"
	default:
		return "unknown"
	}
}

// RenderError is a tagged render failure. Callers branch on Reason with
// errors.As instead of matching message strings.
type RenderError struct {
	Reason FailureReason
	Detail string
}

func (e *RenderError) Error() string {
	return e.Reason.String() + ": " + e.Detail
}

func renderErrorf(reason FailureReason, format string, args ...interface{}) *RenderError {
	return &RenderError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
