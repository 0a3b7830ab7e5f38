// Package mock provides an in-memory model.Client test double, scripted
// with a queue of canned results — used by runner/orchestrator tests in
// place of a real provider.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/lexframe/lexframe/model"
)

// Client replays a scripted sequence of results. Each call to Generate
// or ContinueWithToolResults consumes the next scripted result in
// order; calling past the end of the script is a test bug and panics
// with a clear message rather than returning a zero value silently.
type Client struct {
	mu      sync.Mutex
	script  []*model.Result
	calls   []Call
}

// Call records one invocation for assertions in tests.
type Call struct {
	System   string
	Messages []model.Message
	Tools    []model.ToolDeclaration
}

// New builds a client that returns results in the given order.
func New(results ...*model.Result) *Client {
	return &Client{script: results}
}

// Calls returns the recorded invocation history.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call{}, c.calls...)
}

func (c *Client) next() *model.Result {
	if len(c.script) == 0 {
		panic("model/mock: script exhausted, add more scripted results")
	}
	result := c.script[0]
	c.script = c.script[1:]
	cloned := *result
	cloned.SetState(&model.ConversationState{})
	return &cloned
}

func (c *Client) Generate(_ context.Context, system string, messages []model.Message, tools []model.ToolDeclaration, opts model.Options) (*model.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{System: system, Messages: messages, Tools: tools})
	result := c.next()
	result.SetState(&model.ConversationState{System: system, Messages: append([]model.Message{}, messages...), Tools: tools, Options: opts})
	return result, nil
}

func (c *Client) ContinueWithToolResults(_ context.Context, prior *model.ConversationState, results []model.ToolOutcome) (*model.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prior == nil {
		return nil, fmt.Errorf("model/mock: cannot continue without prior state")
	}
	messages := append([]model.Message{}, prior.Messages...)
	for _, r := range results {
		messages = append(messages, model.Message{Role: "tool", Content: r.Content, ToolCallID: r.ToolCallID, Name: r.Name})
	}
	c.calls = append(c.calls, Call{System: prior.System, Messages: messages, Tools: prior.Tools})
	result := c.next()
	result.SetState(&model.ConversationState{System: prior.System, Messages: messages, Tools: prior.Tools, Options: prior.Options})
	return result, nil
}
