// Package openai adapts OpenAI's chat completions function-calling API to
// the model.Client interface, following the wire shapes in the teacher
// repo's llms/openai.go (OpenAIRequest/OpenAIMessage/OpenAITool/
// OpenAIToolCall), generalized to the shared model.Client contract.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lexframe/lexframe/model"
)

// Config configures the OpenAI adapter.
type Config struct {
	APIKey  string
	Model   string
	Host    string
	Timeout time.Duration

	RequireGroundedBackend   bool
	ManagedIdentityAvailable bool
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// Client implements model.Client against the OpenAI chat completions API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New validates the strict-mode contract and constructs the client.
func New(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.RequireGroundedBackend && !cfg.ManagedIdentityAvailable {
		return nil, &model.ConfigurationError{
			Provider: "openai",
			Message:  "grounded search is required but no managed identity is configured; refusing to start with a degraded fallback",
		}
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string           `json:"type"`
	Function wireToolFunction `json:"function"`
}

type wireToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type wireToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Tools       []wireTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
}

type wireChoice struct {
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type wireError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type wireResponse struct {
	Choices []wireChoice `json:"choices"`
	Usage   wireUsage    `json:"usage"`
	Error   *wireError   `json:"error,omitempty"`
}

func toWireMessages(system string, messages []model.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, wireMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		switch m.Role {
		case "tool":
			out = append(out, wireMessage{Role: "tool", Content: m.Content, ToolCallID: m.ToolCallID})
		default:
			out = append(out, wireMessage{Role: m.Role, Content: m.Content})
		}
	}
	return out
}

func toWireTools(tools []model.ToolDeclaration) []wireTool {
	out := make([]wireTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, wireTool{
			Type: "function",
			Function: wireToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func (c *Client) Generate(ctx context.Context, system string, messages []model.Message, tools []model.ToolDeclaration, opts model.Options) (*model.Result, error) {
	req := wireRequest{
		Model:       c.cfg.Model,
		Messages:    toWireMessages(system, messages),
		MaxTokens:   opts.MaxOutputTokens,
		Temperature: opts.Temperature,
		Tools:       toWireTools(tools),
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := parseWireResponse(resp)
	if err != nil {
		return nil, err
	}
	result.SetState(&model.ConversationState{System: system, Messages: append([]model.Message{}, messages...), Tools: tools, Options: opts})
	return result, nil
}

func (c *Client) ContinueWithToolResults(ctx context.Context, prior *model.ConversationState, results []model.ToolOutcome) (*model.Result, error) {
	if prior == nil {
		return nil, fmt.Errorf("openai: cannot continue without prior state")
	}
	messages := append([]model.Message{}, prior.Messages...)
	for _, r := range results {
		messages = append(messages, model.Message{Role: "tool", Content: r.Content, ToolCallID: r.ToolCallID, Name: r.Name})
	}
	return c.Generate(ctx, prior.System, messages, prior.Tools, prior.Options)
}

func parseWireResponse(resp *wireResponse) (*model.Result, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response had no choices")
	}
	choice := resp.Choices[0]
	result := &model.Result{
		FinishReason: choice.FinishReason,
		Usage:        model.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	}
	if choice.Message.Content != "" {
		result.ContentParts = append(result.ContentParts, choice.Message.Content)
	}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("openai: decode tool call arguments: %w", err)
		}
		result.ToolRequests = append(result.ToolRequests, model.ToolRequest{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	// OpenAI's chat completions API does not return grounded-search
	// citation metadata; Citations stays empty for this adapter.
	return result, nil
}

func (c *Client) call(ctx context.Context, req wireRequest) (*wireResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: api error: %s", resp.Error.Message)
	}
	return &resp, nil
}
