package service

// ErrorKind classifies service failures so the transport layer can map each
// one to a distinct status without inspecting message text.
type ErrorKind int

const (
	// KindUnavailable means no model is attached: startup loading has not
	// finished, or it failed.
	KindUnavailable ErrorKind = iota
	// KindComputationFailed means tokenization or inference failed. The error
	// carries the underlying cause; no partial output is ever surfaced.
	KindComputationFailed
	// KindInvalidRequest means the request violated its structural contract
	// and was rejected before any model interaction.
	KindInvalidRequest
)

// Error is a classified service failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func errUnavailable() *Error {
	return &Error{Kind: KindUnavailable, Message: "model not loaded"}
}

func errComputation(msg string, cause error) *Error {
	return &Error{Kind: KindComputationFailed, Message: msg, Cause: cause}
}

func errInvalid(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}
