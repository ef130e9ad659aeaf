package registry

import "fmt"

// ComputationError wraps a failure inside a function handler. It is
// absorbed by the registry and degrades the cell to an empty display value;
// it never propagates as a fatal error.
type ComputationError struct {
	// Function is the registry id of the failing function, if known.
	Function string
	// Err is the underlying failure.
	Err error
}

func (e *ComputationError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("computation error in %s: %v", e.Function, e.Err)
	}
	return fmt.Sprintf("computation error: %v", e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

func recoveredError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}
