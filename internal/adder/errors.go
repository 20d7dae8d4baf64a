package adder

import (
	"errors"
	"fmt"
)

// CycleError reports the cycles whose chain failed.
type CycleError struct {
	Cycles int
	Errs   []error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%d of %d cycles failed: %v", len(e.Errs), e.Cycles, e.Errs[len(e.Errs)-1])
}

func (e *CycleError) Unwrap() error {
	return errors.Join(e.Errs...)
}
