// Package coreerr defines the structured error taxonomy the orchestration
// runtime uses internally. The runtime never lets a raw Go error cross the
// SessionOrchestrator boundary — everything becomes a Kind plus a
// user-safe message, so the caller always gets a structured response
// instead of a panic or a bubbled exception.
package coreerr

import "fmt"

// Kind enumerates the error taxonomy from the specification's error
// handling design.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindConfiguration    Kind = "configuration_error"
	KindToolUnknown      Kind = "unknown_tool"
	KindToolBadArguments Kind = "bad_arguments"
	KindToolHandlerError Kind = "handler_error"
	KindToolTimeout      Kind = "handler_timeout"
	KindUpstreamUnavail  Kind = "upstream_unavailable"
	KindToolLoopExceeded Kind = "tool_loop_exceeded"
	KindAgentTimeout     Kind = "agent_timeout"
	KindPipelineAborted  Kind = "pipeline_aborted"
	KindInternal         Kind = "internal"
)

// Error is the module's standard error shape: a component, the operation
// that failed, a kind drawn from the taxonomy above, a message, and an
// optional wrapped cause for logging.
type Error struct {
	Component string
	Operation string
	Kind      Kind
	Message   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Operation, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a new Error.
func New(component, operation string, kind Kind, message string, err error) *Error {
	return &Error{Component: component, Operation: operation, Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error produced by this package,
// defaulting to KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if err == nil {
		return ""
	}
	if as, ok := err.(*Error); ok {
		return as.Kind
	}
	_ = e
	return KindInternal
}

// userMessages is the small table mapping error kinds to user-visible,
// non-technical text. Technical detail (Err, stack context) is never
// surfaced here — it belongs in the server-side log only.
var userMessages = map[Kind]string{
	KindInvalidRequest:   "That request doesn't look valid — please check the message and try again.",
	KindConfiguration:    "The assistant is temporarily misconfigured. Please try again later.",
	KindToolLoopExceeded: "I worked through this as far as I could but couldn't fully finish — here's what I have so far.",
	KindAgentTimeout:     "This is taking longer than expected. Please try again in a moment.",
	KindPipelineAborted:  "I ran into a problem partway through and couldn't complete this request.",
	KindInternal:         "Something went wrong on our end. Please try again.",
}

// UserMessage returns the user-safe message for a Kind.
func UserMessage(k Kind) string {
	if m, ok := userMessages[k]; ok {
		return m
	}
	return userMessages[KindInternal]
}
