// Package runner implements the AgentRunner (spec.md §4.7): the
// bounded tool-calling loop one catalog agent executes for one turn.
//
// Grounded directly on the teacher repo's agent/agent.go execute()
// state machine (iteration loop, callLLM, executeTools, ShouldStop),
// stripped of the teacher's pluggable "reasoning strategy"
// abstraction — spec.md's loop shape is fixed, not strategy-selectable
// — and given a hard per-turn wall-clock timeout plus a
// max_tool_iterations bound (spec.md §4.7).
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/lexframe/lexframe/catalog"
	"github.com/lexframe/lexframe/internal/coreerr"
	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/tool"
)

// DefaultMaxToolIterations bounds how many rounds of tool calling one
// agent turn may go through before the loop is force-stopped
// (spec.md §4.7).
const DefaultMaxToolIterations = 6

// DefaultAgentTimeout is the wall-clock budget for one agent's full
// turn, independent of the request-level timeout.
const DefaultAgentTimeout = 30 * time.Second

// State is the bounded loop's current phase, mirroring spec.md §4.7's
// state machine (init → awaiting_model → dispatching → ... →
// complete|failed).
type State string

const (
	StateInit          State = "init"
	StateAwaitingModel State = "awaiting_model"
	StateDispatching   State = "dispatching"
	StateComplete      State = "complete"
	StateFailed        State = "failed"
)

// ToolCallRecord is one tool invocation made during the turn, recorded
// for the thinking log.
type ToolCallRecord struct {
	Name      string
	Arguments map[string]any
	Result    tool.Outcome
	Duration  time.Duration
}

// Result is what one agent turn produces.
type Result struct {
	AgentName    catalog.Name
	ContentParts []string
	Citations    []model.Citation
	ToolCalls    []ToolCallRecord
	Degraded     bool // true when tool_loop_exceeded or agent_timeout cut the turn short
	FinalState   State
}

// Runner executes one catalog agent's bounded tool-calling loop.
type Runner struct {
	Model   model.Client
	Tools   *tool.Registry
	Timeout time.Duration
}

// New builds a Runner with spec.md defaults.
func New(m model.Client, tools *tool.Registry) *Runner {
	return &Runner{Model: m, Tools: tools, Timeout: DefaultAgentTimeout}
}

// Run drives agent through its bounded loop: call the model, dispatch
// any requested tools, feed outcomes back, repeat until the model
// stops requesting tools or the iteration/timeout bound is hit.
func (r *Runner) Run(ctx context.Context, agent catalog.Agent, tc *tool.Context, system string, history []model.Message) (*Result, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultAgentTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxIterations := agent.MaxToolIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxToolIterations
	}

	toolDecls, err := r.Tools.Subset(agent.ToolNames)
	if err != nil {
		return nil, coreerr.New("runner.Runner", "Run", coreerr.KindInternal, "failed to resolve agent's tool subset", err)
	}

	result := &Result{AgentName: agent.Name, FinalState: StateInit}

	opts := agent.DefaultOptions
	genResult, err := r.Model.Generate(rctx, system, history, toolDecls, opts)
	if err != nil {
		return r.fail(result, rctx, err)
	}

	for iteration := 1; ; iteration++ {
		result.ContentParts = append(result.ContentParts, genResult.ContentParts...)
		result.Citations = append(result.Citations, genResult.Citations...)

		if len(genResult.ToolRequests) == 0 {
			result.FinalState = StateComplete
			return result, nil
		}

		if iteration > maxIterations {
			result.Degraded = true
			result.FinalState = StateFailed
			return result, coreerr.New("runner.Runner", "Run", coreerr.KindToolLoopExceeded, fmt.Sprintf("agent exceeded its %d-iteration tool-call bound", maxIterations), nil)
		}

		outcomes := make([]model.ToolOutcome, 0, len(genResult.ToolRequests))
		for _, req := range genResult.ToolRequests {
			start := time.Now()
			outcome := r.Tools.Dispatch(rctx, tc, req.Name, req.Arguments)
			record := ToolCallRecord{Name: req.Name, Arguments: req.Arguments, Result: outcome, Duration: time.Since(start)}
			result.ToolCalls = append(result.ToolCalls, record)
			outcomes = append(outcomes, model.ToolOutcome{ToolCallID: req.ID, Name: req.Name, Content: outcome.JSON()})
		}

		next, err := r.Model.ContinueWithToolResults(rctx, genResult.State(), outcomes)
		if err != nil {
			return r.fail(result, rctx, err)
		}
		genResult = next
	}
}

// fail classifies a generation/continuation error against the
// request's own deadline: a context-deadline error becomes
// agent_timeout (a graceful "taking longer than expected" outcome that
// still returns whatever partial content was gathered), anything else
// becomes upstream_unavailable.
func (r *Runner) fail(result *Result, ctx context.Context, cause error) (*Result, error) {
	result.FinalState = StateFailed
	if ctx.Err() != nil {
		result.Degraded = true
		return result, coreerr.New("runner.Runner", "Run", coreerr.KindAgentTimeout, "agent turn exceeded its time budget", cause)
	}
	return result, coreerr.New("runner.Runner", "Run", coreerr.KindUpstreamUnavail, "model provider call failed", fmt.Errorf("%w", cause))
}
