// Package orchestrator implements the SessionOrchestrator (spec.md
// §4.8): the per-turn coordination algorithm that resolves a session,
// classifies the query, runs the resulting agent pipeline in
// sequence, and persists the turn's messages and audit trace.
//
// Grounded on the teacher repo's team/team.go Team (per-session
// mutable state guarded by a mutex, TeamError-style structured
// errors), generalized from a DAG workflow executor to spec.md §4.8's
// fixed classify -> sequential-pipeline -> persist flow.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lexframe/lexframe/catalog"
	"github.com/lexframe/lexframe/classifier"
	"github.com/lexframe/lexframe/contextbuilder"
	"github.com/lexframe/lexframe/internal/coreerr"
	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/runner"
	"github.com/lexframe/lexframe/store"
	"github.com/lexframe/lexframe/thinkinglog"
	"github.com/lexframe/lexframe/tool"
)

// maxMessageLength is the chat request's message size bound (spec.md
// §6): exactly 8,000 characters succeeds, 8,001 is rejected.
const maxMessageLength = 8000

// ChatRequest is the external-facing request shape (spec.md §6).
type ChatRequest struct {
	SessionID  *string
	ContractID *string
	Query      string
}

// ChatResponse is the external-facing response shape (spec.md §6). The
// assistant-text field is named Message, not Response, per the
// resolved Open Question. The orchestrator never raises a raw error to
// its caller for a request-level failure (spec.md §7's propagation
// policy) — instead Success is false and Error carries a user-safe
// message, so HandleTurn's Go error return is reserved for failures
// that indicate a bug in the orchestrator itself.
type ChatResponse struct {
	Success   bool
	Message   string
	Agent     string
	AgentID   string
	Citations []model.Citation
	ToolsUsed []string
	SessionID string
	Error     string
	Degraded  bool
}

// failureResponse builds the structured failure HandleTurn returns in
// place of a raw error, per spec.md §7: every request-level or
// pipeline-level failure still produces the fixed chat-response shape,
// just with Success false and Error set to a user-safe message.
func failureResponse(sessionID string, err error) *ChatResponse {
	return &ChatResponse{
		Success:   false,
		SessionID: sessionID,
		Error:     coreerr.UserMessage(coreerr.KindOf(err)),
	}
}

// Orchestrator coordinates one turn end-to-end.
type Orchestrator struct {
	Store          store.Store
	Catalog        *catalog.Catalog
	Classifier     *classifier.Classifier
	ContextBuilder *contextbuilder.Builder
	Runner         *runner.Runner
	ThinkingLog    *thinkinglog.Logger

	// RequestTimeout bounds the whole turn, independent of each agent's
	// own timeout.
	RequestTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// DefaultRequestTimeout is the whole-turn wall-clock budget.
const DefaultRequestTimeout = 90 * time.Second

// New builds an Orchestrator wiring every collaborator the turn
// algorithm needs.
func New(s store.Store, cat *catalog.Catalog, cls *classifier.Classifier, cb *contextbuilder.Builder, rn *runner.Runner, tl *thinkinglog.Logger) *Orchestrator {
	return &Orchestrator{
		Store:          s,
		Catalog:        cat,
		Classifier:     cls,
		ContextBuilder: cb,
		Runner:         rn,
		ThinkingLog:    tl,
		RequestTimeout: DefaultRequestTimeout,
		sessions:       make(map[string]*sync.Mutex),
	}
}

// sessionLock returns (creating if needed) the per-session advisory
// lock that serializes turns on one session, per spec.md §5's resolved
// Open Question: concurrent turns on the same session queue rather
// than reject or race.
func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.sessions[sessionID] = lock
	}
	return lock
}

// HandleTurn runs the full per-turn algorithm: resolve/create the
// session, persist the user message first, classify the query, run
// the resulting pipeline sequentially, select the final output,
// persist the assistant message last, and flush the turn's thinking
// log — in that order, so a crash partway through never leaves an
// assistant message without its preceding user message (spec.md §4.2
// ordering contract).
func (o *Orchestrator) HandleTurn(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := validateMessage(req.Query); err != nil {
		return failureResponse("", err), nil
	}

	timeout := o.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := o.resolveSession(ctx, req.SessionID, req.ContractID)
	if err != nil {
		return failureResponse("", err), nil
	}

	lock := o.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	turnID := idgen.NewWithPrefix("turn")
	o.ThinkingLog.BeginTurn(session.ID, turnID)

	userMsg := &store.Message{ID: idgen.NewWithPrefix("msg"), SessionID: session.ID, Role: store.RoleUser, Content: req.Query, CreatedAt: time.Now()}
	if err := o.Store.CreateMessage(ctx, userMsg); err != nil {
		persistErr := coreerr.New("orchestrator.Orchestrator", "HandleTurn", coreerr.KindInternal, "failed to persist user message", err)
		return failureResponse(session.ID, persistErr), nil
	}

	hasClauses := false
	if session.ActiveContractID != nil {
		clauses, err := o.Store.ListClauses(ctx, *session.ActiveContractID)
		if err == nil && len(clauses) > 0 {
			hasClauses = true
		}
	}

	classifyStart := time.Now()
	pipeline, err := o.Classifier.Classify(ctx, req.Query, hasClauses)
	o.ThinkingLog.Append(session.ID, turnID, "", store.StageClassify, map[string]any{"query": req.Query, "pipeline": pipeline}, time.Since(classifyStart))
	if err != nil {
		o.ThinkingLog.Append(session.ID, turnID, "", store.StageError, map[string]any{"error": err.Error()}, 0)
		_ = o.ThinkingLog.Flush(ctx, turnID)
		classifyErr := coreerr.New("orchestrator.Orchestrator", "HandleTurn", coreerr.KindPipelineAborted, "failed to classify the query", err)
		return failureResponse(session.ID, classifyErr), nil
	}

	response, degraded, err := o.runPipeline(ctx, session, turnID, pipeline, req.Query)
	if err != nil {
		o.ThinkingLog.Append(session.ID, turnID, "", store.StageError, map[string]any{"error": err.Error()}, 0)
		_ = o.ThinkingLog.Flush(ctx, turnID)
		return failureResponse(session.ID, err), nil
	}

	citations := make([]store.Citation, 0, len(response.Citations))
	for _, c := range response.Citations {
		citations = append(citations, store.Citation(c))
	}
	assistantMsg := &store.Message{
		ID:        idgen.NewWithPrefix("msg"),
		SessionID: session.ID,
		Role:      store.RoleAssistant,
		Content:   response.Message,
		Citations: citations,
		CreatedAt: time.Now(),
	}
	if err := o.Store.CreateMessage(ctx, assistantMsg); err != nil {
		persistErr := coreerr.New("orchestrator.Orchestrator", "HandleTurn", coreerr.KindInternal, "failed to persist assistant message", err)
		return failureResponse(session.ID, persistErr), nil
	}

	if err := o.ThinkingLog.Flush(ctx, turnID); err != nil {
		// A flush failure does not invalidate an otherwise-successful
		// turn; the audit trace is best-effort relative to the user-facing
		// response (spec.md §4.9).
		_ = err
	}

	response.Success = true
	response.Degraded = degraded
	return response, nil
}

// validateMessage enforces the chat request's message bound (spec.md
// §6): empty or whitespace-only is rejected, as is anything past the
// 8,000-character boundary.
func validateMessage(query string) error {
	if strings.TrimSpace(query) == "" {
		return coreerr.New("orchestrator.Orchestrator", "HandleTurn", coreerr.KindInvalidRequest, "message is empty", nil)
	}
	if len(query) > maxMessageLength {
		return coreerr.New("orchestrator.Orchestrator", "HandleTurn", coreerr.KindInvalidRequest, fmt.Sprintf("message exceeds the %d-character limit", maxMessageLength), nil)
	}
	return nil
}

// resolveSession creates a new session when req carries no
// SessionID, or loads the existing one and updates its active
// contract when req carries one.
func (o *Orchestrator) resolveSession(ctx context.Context, sessionID, contractID *string) (*store.Session, error) {
	if sessionID == nil {
		s := &store.Session{ID: idgen.NewWithPrefix("sess"), CreatedAt: time.Now(), UpdatedAt: time.Now(), ActiveContractID: contractID}
		if err := o.Store.CreateSession(ctx, s); err != nil {
			return nil, coreerr.New("orchestrator.Orchestrator", "resolveSession", coreerr.KindInternal, "failed to create session", err)
		}
		return s, nil
	}

	s, err := o.Store.GetSession(ctx, *sessionID)
	if err != nil {
		return nil, coreerr.New("orchestrator.Orchestrator", "resolveSession", coreerr.KindInvalidRequest, "session not found", err)
	}
	if contractID != nil && (s.ActiveContractID == nil || *s.ActiveContractID != *contractID) {
		s.ActiveContractID = contractID
		s.UpdatedAt = time.Now()
		if err := o.Store.UpdateSession(ctx, s); err != nil {
			return nil, coreerr.New("orchestrator.Orchestrator", "resolveSession", coreerr.KindInternal, "failed to update session's active contract", err)
		}
	}
	return s, nil
}

// runPipeline runs each agent in order, feeding the running
// conversation forward, and selects the final output: LEGAL_MEMO
// always synthesizes when present in the pipeline (spec.md §4.8); when
// it isn't, the last agent's output speaks for the turn. A failure in
// one agent does not necessarily abort the whole pipeline — only an
// agent_timeout or tool_loop_exceeded degrades the turn rather than
// failing it outright, per the "result-typed outcomes, not exceptions"
// design note.
func (o *Orchestrator) runPipeline(ctx context.Context, session *store.Session, turnID string, pipeline classifier.Pipeline, query string) (*ChatResponse, bool, error) {
	var lastContent []string
	var allCitations []model.Citation
	var synthesized []string
	var lastAgent, synthesizingAgent catalog.Name
	degraded := false

	toolsUsedSeen := map[string]bool{}
	var toolsUsed []string
	recordToolUsed := func(name string) {
		if !toolsUsedSeen[name] {
			toolsUsedSeen[name] = true
			toolsUsed = append(toolsUsed, name)
		}
	}

	history := []model.Message{{Role: "user", Content: query}}

	for _, agentName := range pipeline {
		agent, ok := o.Catalog.Get(agentName)
		if !ok {
			return nil, false, coreerr.New("orchestrator.Orchestrator", "runPipeline", coreerr.KindInternal, fmt.Sprintf("pipeline referenced unknown agent %q", agentName), nil)
		}

		assembled, err := o.ContextBuilder.Build(ctx, session.ID, session.ActiveContractID, agent.SystemInstructions)
		if err != nil {
			return nil, false, coreerr.New("orchestrator.Orchestrator", "runPipeline", coreerr.KindInternal, "failed to assemble context", err)
		}
		turnHistory := append(append([]model.Message{}, assembled.History...), history...)

		startTime := time.Now()
		o.ThinkingLog.Append(session.ID, turnID, string(agentName), store.StageAgentStart, map[string]any{}, 0)

		tc := &tool.Context{SessionID: session.ID, ContractID: session.ActiveContractID, AgentName: string(agentName)}
		result, err := o.Runner.Run(ctx, agent, tc, assembled.SystemBlock, turnHistory)
		if err != nil {
			kind := coreerr.KindOf(err)
			if kind == coreerr.KindAgentTimeout || kind == coreerr.KindToolLoopExceeded {
				degraded = true
				o.ThinkingLog.Append(session.ID, turnID, string(agentName), store.StageError, map[string]any{"error": err.Error(), "degraded": true}, time.Since(startTime))
				if result != nil && len(result.ContentParts) > 0 {
					lastContent = result.ContentParts
					lastAgent = agentName
					allCitations = mergeCitations(allCitations, result.Citations)
					for _, call := range result.ToolCalls {
						recordToolUsed(call.Name)
					}
					for _, part := range result.ContentParts {
						history = append(history, model.Message{Role: "assistant", Content: part})
					}
				}
				continue
			}
			return nil, false, err
		}

		for _, call := range result.ToolCalls {
			o.ThinkingLog.Append(session.ID, turnID, string(agentName), store.StageToolCall, map[string]any{"tool": call.Name, "arguments": call.Arguments}, call.Duration)
			o.ThinkingLog.Append(session.ID, turnID, string(agentName), store.StageToolResult, map[string]any{"tool": call.Name, "result": call.Result.JSON()}, 0)
			recordToolUsed(call.Name)
		}
		o.ThinkingLog.Append(session.ID, turnID, string(agentName), store.StageAgentOutput, map[string]any{"content": result.ContentParts}, time.Since(startTime))

		degraded = degraded || result.Degraded
		lastContent = result.ContentParts
		lastAgent = agentName
		allCitations = mergeCitations(allCitations, result.Citations)

		// Feed this agent's output forward as assistant context for the
		// next agent in the pipeline.
		for _, part := range result.ContentParts {
			history = append(history, model.Message{Role: "assistant", Content: part})
		}

		if agentName == catalog.LegalMemo {
			synthesized = result.ContentParts
			synthesizingAgent = agentName
		}
	}

	finalContent := lastContent
	finalAgent := lastAgent
	if len(synthesized) > 0 {
		finalContent = synthesized
		finalAgent = synthesizingAgent
	}

	message := ""
	for i, part := range finalContent {
		if i > 0 {
			message += "\n\n"
		}
		message += part
	}

	// spec.md §6 names both "agent" and "agent_id" in the response
	// contract; the catalog has no separate identifier scheme from the
	// agent's own name, so both fields carry the same catalog.Name value.
	return &ChatResponse{
		SessionID: session.ID,
		Message:   message,
		Agent:     string(finalAgent),
		AgentID:   string(finalAgent),
		Citations: allCitations,
		ToolsUsed: toolsUsed,
	}, degraded, nil
}

// mergeCitations appends new citations, deduplicating by URI so the
// same source isn't cited twice across agents in one pipeline.
func mergeCitations(existing, next []model.Citation) []model.Citation {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.URI] = true
	}
	for _, c := range next {
		if !seen[c.URI] {
			existing = append(existing, c)
			seen[c.URI] = true
		}
	}
	return existing
}
