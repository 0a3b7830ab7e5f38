package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/catalog"
	"github.com/lexframe/lexframe/internal/coreerr"
	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/model/mock"
	"github.com/lexframe/lexframe/tool"
)

func testAgent(maxIterations int) catalog.Agent {
	return catalog.Agent{
		Name:              catalog.Assistant,
		ToolNames:         []string{"noop"},
		MaxToolIterations: maxIterations,
	}
}

func registryWithNoop(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.New()
	r.MustRegister(tool.Definition{
		Name:        "noop",
		Description: "does nothing",
		ArgsSample:  &struct{}{},
		Handler: func(ctx context.Context, tc *tool.Context, args any) (any, error) {
			return map[string]string{"ok": "true"}, nil
		},
	})
	return r
}

func TestRun_CompletesWithoutToolCalls(t *testing.T) {
	m := mock.New(&model.Result{ContentParts: []string{"the answer"}})
	r := New(m, registryWithNoop(t))

	result, err := r.Run(context.Background(), testAgent(6), &tool.Context{SessionID: "s1"}, "system", nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, result.FinalState)
	assert.Equal(t, []string{"the answer"}, result.ContentParts)
	assert.False(t, result.Degraded)
	assert.Empty(t, result.ToolCalls)
}

func TestRun_DrivesMultiIterationToolLoopToCompletion(t *testing.T) {
	m := mock.New(
		&model.Result{ToolRequests: []model.ToolRequest{{ID: "tc1", Name: "noop", Arguments: map[string]any{}}}},
		&model.Result{ToolRequests: []model.ToolRequest{{ID: "tc2", Name: "noop", Arguments: map[string]any{}}}},
		&model.Result{ContentParts: []string{"final content"}},
	)
	r := New(m, registryWithNoop(t))

	result, err := r.Run(context.Background(), testAgent(6), &tool.Context{SessionID: "s1"}, "system", nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, result.FinalState)
	assert.Equal(t, []string{"final content"}, result.ContentParts)
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "noop", result.ToolCalls[0].Name)
}

func TestRun_ToolLoopExceededReturnsStructuredError(t *testing.T) {
	maxIterations := 2
	script := make([]*model.Result, 0, maxIterations+2)
	for i := 0; i < maxIterations+2; i++ {
		script = append(script, &model.Result{ToolRequests: []model.ToolRequest{{ID: "tc", Name: "noop", Arguments: map[string]any{}}}})
	}
	m := mock.New(script...)
	r := New(m, registryWithNoop(t))

	result, err := r.Run(context.Background(), testAgent(maxIterations), &tool.Context{SessionID: "s1"}, "system", nil)
	require.Error(t, err)
	assert.Equal(t, coreerr.KindToolLoopExceeded, coreerr.KindOf(err))
	assert.Equal(t, StateFailed, result.FinalState)
	assert.True(t, result.Degraded)
	// The loop calls Generate once, then ContinueWithToolResults once per
	// iteration until the bound is exceeded: maxIterations+1 calls total.
	assert.Len(t, m.Calls(), maxIterations+1)
}

// deadlineRespectingClient is a model.Client fake that returns ctx.Err()
// once the runner's own timeout has already elapsed, unlike model/mock
// which ignores context entirely — needed to exercise the agent_timeout
// classification path in Runner.fail.
type deadlineRespectingClient struct{}

func (deadlineRespectingClient) Generate(ctx context.Context, system string, messages []model.Message, tools []model.ToolDeclaration, opts model.Options) (*model.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (deadlineRespectingClient) ContinueWithToolResults(ctx context.Context, prior *model.ConversationState, results []model.ToolOutcome) (*model.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_AgentTimeoutDegradesRatherThanFails(t *testing.T) {
	r := New(deadlineRespectingClient{}, registryWithNoop(t))
	r.Timeout = 10 * time.Millisecond

	result, err := r.Run(context.Background(), testAgent(6), &tool.Context{SessionID: "s1"}, "system", nil)
	require.Error(t, err)
	assert.Equal(t, coreerr.KindAgentTimeout, coreerr.KindOf(err))
	assert.Equal(t, StateFailed, result.FinalState)
	assert.True(t, result.Degraded)
}

func TestRun_UnknownToolInAgentSubsetIsInternalError(t *testing.T) {
	m := mock.New(&model.Result{ContentParts: []string{"unused"}})
	r := New(m, registryWithNoop(t))
	agent := testAgent(6)
	agent.ToolNames = []string{"does_not_exist"}

	_, err := r.Run(context.Background(), agent, &tool.Context{SessionID: "s1"}, "system", nil)
	require.Error(t, err)
	assert.Equal(t, coreerr.KindInternal, coreerr.KindOf(err))
}
