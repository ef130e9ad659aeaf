package codec

import "fmt"

// FormatError indicates a document that does not match the expected shape,
// e.g. a root that is not a sequence.
type FormatError struct {
	// Reason describes what was malformed.
	Reason string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error: %s: %v", e.Reason, e.Err)
	}
	return "format error: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
