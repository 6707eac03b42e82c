package embedding

import "fmt"

// InferenceError wraps a tokenization or forward-pass failure. Callers match
// on it with errors.As to distinguish compute failures from other errors.
type InferenceError struct {
	Cause error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Cause)
}

func (e *InferenceError) Unwrap() error {
	return e.Cause
}
