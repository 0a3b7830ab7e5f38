// Package model defines the abstract LLM provider the runtime consumes
// (spec.md §4.3): content generation, tool declarations, and grounded
// search with citation extraction. Concrete adapters (model/anthropic,
// model/openai, model/mock) normalize their vendor's wire format into
// this shared shape, following the teacher repo's per-vendor adapter
// split in llms/anthropic.go and llms/openai.go.
package model

import "context"

// Message is one entry in the conversation sent to the model.
type Message struct {
	Role       string // "user", "assistant", "tool"
	Content    string
	ToolCallID string // set when Role == "tool"
	Name       string // tool name, set when Role == "tool"
}

// ToolDeclaration is a tool's LLM-facing menu entry.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON-schema-like
}

// Options configures one generation call.
type Options struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	GroundedSearch  bool
	ResponseMIME    string
}

// ToolRequest is the model's request to invoke a tool.
type ToolRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Citation is one grounding attribution extracted from grounded-search
// metadata.
type Citation struct {
	Title string
	URI   string
	Start *int
	End   *int
}

// Usage is advisory token accounting — the runtime trusts it for
// observability only, never for correctness decisions (spec.md §4.3).
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Result is what one Generate/ContinueWithToolResults call returns.
type Result struct {
	ContentParts []string
	ToolRequests []ToolRequest
	Citations    []Citation
	FinishReason string
	Usage        Usage

	// state carries whatever the adapter needs to replay or continue the
	// transcript on the next call; opaque to the caller.
	state *ConversationState
}

// State returns the opaque continuation handle produced by this result,
// to be passed back into ContinueWithToolResults.
func (r *Result) State() *ConversationState { return r.state }

// SetState records the continuation handle; adapters call it before
// returning a Result.
func (r *Result) SetState(s *ConversationState) { r.state = s }

// ConversationState is the opaque "prior_state" spec.md §4.3 describes.
// Adapters that cannot hold server-side state simulate continuation by
// replaying the full transcript, so the state simply accumulates it.
type ConversationState struct {
	System   string
	Messages []Message
	Tools    []ToolDeclaration
	Options  Options
}

// ToolOutcome is one tool dispatch result fed back to the model.
type ToolOutcome struct {
	ToolCallID string
	Name       string
	Content    string // JSON-serialized {"error":...} or the tool's value
}

// Client is the abstract ModelClient adapter (spec.md §4.3).
type Client interface {
	// Generate starts or continues generation given a full message
	// history. Returns tool requests when the model wants to call tools.
	Generate(ctx context.Context, system string, messages []Message, tools []ToolDeclaration, opts Options) (*Result, error)

	// ContinueWithToolResults resumes generation after tool dispatch,
	// given the prior call's continuation state and the outcomes.
	ContinueWithToolResults(ctx context.Context, prior *ConversationState, results []ToolOutcome) (*Result, error)
}

// ConfigurationError signals a fail-fast startup condition: e.g. the
// environment requires grounded access via a managed identity and no
// such identity is available. It must never be silently swallowed in
// favor of an alternate path (spec.md §4.3 "Strict-mode contract").
type ConfigurationError struct {
	Provider string
	Message  string
}

func (e *ConfigurationError) Error() string {
	return "model: configuration error for provider " + e.Provider + ": " + e.Message
}
