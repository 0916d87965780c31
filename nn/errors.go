package nn

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when a vector's length disagrees with the
	// network's declared layer sizes.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidConfig is returned for non-positive layer sizes or a
	// non-positive or non-finite learning rate.
	ErrInvalidConfig = errors.New("invalid network configuration")
	// ErrCorruptSnapshot is returned when persisted parameters disagree with
	// their declared dimensions.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

func errShape(what string, got, want int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s has %d values, expected %d", what, got, want)
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

func (e errInvalidLine) Unwrap() error {
	return ErrShapeMismatch
}
