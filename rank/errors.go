package rank

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a pass is asked to rank nothing.
var ErrEmptyInput = errors.New("rank: empty input")

// IncomparableKeyError reports two keys that cannot be ordered against each
// other, e.g. a string and a number in the same pass.
type IncomparableKeyError struct {
	Left  any
	Right any
}

func (e *IncomparableKeyError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("rank: unsupported key %v (%T)", e.Left, e.Left)
	}
	return fmt.Sprintf("rank: incomparable keys %v (%T) and %v (%T)", e.Left, e.Left, e.Right, e.Right)
}
