// Package anthropic adapts Anthropic's Messages API to the model.Client
// interface. Request/response shapes are adapted from the teacher
// repo's llms/anthropic.go, generalized to surface grounded-search
// citations and the strict-mode fail-fast contract (spec.md §4.3).
package anthropic

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

// Config configures the Anthropic adapter.
type Config struct {
	APIKey  string
	Model   string
	Host    string
	Timeout time.Duration

	// RequireGroundedBackend mirrors spec.md §4.3's strict-mode contract:
	// when true, a missing managed-identity grounded-search capability
	// must surface a model.ConfigurationError at construction time
	// rather than silently falling back to ungrounded generation.
	RequireGroundedBackend bool
	// ManagedIdentityAvailable reports whether the runtime environment
	// actually has the scoped credential grounded search needs. A real
	// deployment wires this to its credential broker; tests set it
	// directly.
	ManagedIdentityAvailable bool
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "https://api.anthropic.com"
	}
	if c.Model == "" {
		c.Model = "claude-sonnet-4-5"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// Client implements model.Client against the Anthropic Messages API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New validates strict-mode configuration and constructs the client.
// Per spec.md §4.3, a grounded-search requirement with no managed
// identity available is a fail-fast configuration_error, never a
// silent fallback.
func New(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.RequireGroundedBackend && !cfg.ManagedIdentityAvailable {
		return nil, &model.ConfigurationError{
			Provider: "anthropic",
			Message:  "grounded search is required but no managed identity is configured; refusing to start with a degraded fallback",
		}
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

type wireTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type wireContent struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	Citations []wireCitation `json:"citations,omitempty"`
}

type wireCitation struct {
	Title         string `json:"title,omitempty"`
	URL           string `json:"url,omitempty"`
	StartCharIdx  *int   `json:"start_char_index,omitempty"`
	EndCharIdx    *int   `json:"end_char_index,omitempty"`
}

type wireMessage struct {
	Role    string        `json:"role"`
	Content []wireContent `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	TopK        int           `json:"top_k,omitempty"`
	Tools       []wireTool    `json:"tools,omitempty"`
}

type wireResponse struct {
	Content    []wireContent `json:"content"`
	StopReason string        `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func toWireMessages(messages []model.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "tool":
			out = append(out, wireMessage{
				Role: "user",
				Content: []wireContent{{
					Type:      "tool_result",
					ToolUseID: m.ToolCallID,
					Content:   m.Content,
				}},
			})
		default:
			out = append(out, wireMessage{
				Role:    m.Role,
				Content: []wireContent{{Type: "text", Text: m.Content}},
			})
		}
	}
	return out
}

func toWireTools(tools []model.ToolDeclaration) []wireTool {
	out := make([]wireTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, wireTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}
	return out
}

func (c *Client) Generate(ctx context.Context, system string, messages []model.Message, tools []model.ToolDeclaration, opts model.Options) (*model.Result, error) {
	req := wireRequest{
		Model:       c.cfg.Model,
		System:      system,
		Messages:    toWireMessages(messages),
		MaxTokens:   opts.MaxOutputTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		TopK:        opts.TopK,
		Tools:       toWireTools(tools),
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}

	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	result := parseWireResponse(resp)
	result.SetState(&model.ConversationState{System: system, Messages: append([]model.Message{}, messages...), Tools: tools, Options: opts})
	return result, nil
}

func (c *Client) ContinueWithToolResults(ctx context.Context, prior *model.ConversationState, results []model.ToolOutcome) (*model.Result, error) {
	if prior == nil {
		return nil, fmt.Errorf("anthropic: cannot continue without prior state")
	}
	messages := append([]model.Message{}, prior.Messages...)
	for _, r := range results {
		messages = append(messages, model.Message{Role: "tool", Content: r.Content, ToolCallID: r.ToolCallID, Name: r.Name})
	}
	return c.Generate(ctx, prior.System, messages, prior.Tools, prior.Options)
}

func parseWireResponse(resp *wireResponse) *model.Result {
	result := &model.Result{FinishReason: resp.StopReason, Usage: model.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.ContentParts = append(result.ContentParts, block.Text)
			for _, cite := range block.Citations {
				result.Citations = append(result.Citations, model.Citation{Title: cite.Title, URI: cite.URL, Start: cite.StartCharIdx, End: cite.EndCharIdx})
			}
		case "tool_use":
			result.ToolRequests = append(result.ToolRequests, model.ToolRequest{ID: block.ID, Name: block.Name, Arguments: block.Input})
		}
	}
	return result
}

func (c *Client) call(ctx context.Context, req wireRequest) (*wireResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read response: %w", err)
	}

	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic: api error: %s", resp.Error.Message)
	}
	return &resp, nil
}
