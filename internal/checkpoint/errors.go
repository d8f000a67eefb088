package checkpoint

import "fmt"

// InvariantViolationError signals that the simulator emitted a
// different number of loadarch lines than the command plan predicted —
// a fatal condition since there is no way to know where one
// checkpoint's register dump ends and the next begins (spec.md §4.6).
type InvariantViolationError struct {
	Expected, Got int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("checkpoint: expected %d loadarch lines, got %d", e.Expected, e.Got)
}

func invariantViolation(expected, got int) error {
	return &InvariantViolationError{Expected: expected, Got: got}
}
