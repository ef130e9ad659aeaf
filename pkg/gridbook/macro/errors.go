package macro

import "fmt"

// ValidationError indicates bad caller input to a load request, such as an
// empty module id or url.
type ValidationError struct {
	// Field names the offending input.
	Field string
	// Reason describes the problem.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FetchError indicates a network or status failure retrieving module bytes.
type FetchError struct {
	// URL is the requested module url.
	URL string
	// Status is the HTTP status code for non-success responses, zero for
	// transport failures.
	Status int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InstantiationError indicates the binary module failed to instantiate.
type InstantiationError struct {
	// ModuleID is the caller-supplied module id.
	ModuleID string
	// Err is the underlying runtime error.
	Err error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiate module %q: %v", e.ModuleID, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ContractError indicates an instantiated module that violates the export
// contract (no linear memory, or no callable exports).
type ContractError struct {
	// ModuleID is the caller-supplied module id.
	ModuleID string
	// Reason describes the violated requirement.
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("module %q: %s", e.ModuleID, e.Reason)
}
