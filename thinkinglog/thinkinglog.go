// Package thinkinglog implements the ThinkingLogger (spec.md §4.9): an
// append-only, strictly-ordered audit trace of one turn's classify /
// agent_start / tool_call / tool_result / agent_output / error events,
// buffered in memory and flushed to Store in one batch per turn.
//
// Grounded on the teacher repo's context/conversation.go in-memory
// buffer idiom (mutex-guarded slice, periodic trim), generalized to a
// per-turn append log. Structured logging via hashicorp/go-hclog and
// counters via prometheus/client_golang are declared in the teacher's
// go.mod but unwired at the root level; both are wired here.
package thinkinglog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/store"
)

var (
	entriesAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexframe_thinking_log_entries_total",
		Help: "Thinking log entries appended, by stage.",
	}, []string{"stage"})
	flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "lexframe_thinking_log_flush_seconds",
		Help: "Duration of batch flushes to Store.",
	})
)

func init() {
	prometheus.MustRegister(entriesAppended, flushDuration)
}

// Logger accumulates one turn's ThinkingLog entries in memory with a
// strictly increasing per-turn sequence number, then flushes them to
// Store in a single batch (spec.md §4.9).
type Logger struct {
	mu       sync.Mutex
	store    store.Store
	logger   hclog.Logger
	pending  []*store.ThinkingLog
	sequence map[string]int    // turnID -> next sequence number
	active   map[string]string // sessionID -> current turnID
}

// New builds a Logger backed by s, logging through hclog at Info level
// by default.
func New(s store.Store) *Logger {
	return &Logger{
		store:    s,
		logger:   hclog.New(&hclog.LoggerOptions{Name: "thinkinglog", Level: hclog.Info}),
		sequence: make(map[string]int),
	}
}

// Append records one event in the turn's buffer with the next sequence
// number for that turn.
func (l *Logger) Append(sessionID, turnID, agentName string, stage store.Stage, payload map[string]any, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sequence[turnID]++
	entry := &store.ThinkingLog{
		ID:         idgen.NewWithPrefix("log"),
		SessionID:  sessionID,
		TurnID:     turnID,
		Sequence:   l.sequence[turnID],
		AgentName:  agentName,
		Stage:      stage,
		Payload:    payload,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	l.pending = append(l.pending, entry)
	entriesAppended.WithLabelValues(string(stage)).Inc()
	l.logger.Debug("thinking log entry", "session_id", sessionID, "turn_id", turnID, "stage", stage, "agent", agentName)
}

// RecordThought satisfies tool.ThoughtRecorder: the log_thought tool
// appends directly into the current turn's buffer. Since the tool
// layer does not carry a turn ID, the thought is attached to the most
// recently opened turn for this session.
func (l *Logger) RecordThought(ctx context.Context, sessionID, agentName, content string) error {
	l.mu.Lock()
	turnID := l.currentTurn(sessionID)
	l.mu.Unlock()
	if turnID == "" {
		return fmt.Errorf("thinkinglog: no active turn for session %s", sessionID)
	}
	l.Append(sessionID, turnID, agentName, store.StageAgentOutput, map[string]any{"thought": content}, 0)
	return nil
}

func (l *Logger) currentTurn(sessionID string) string {
	return l.active[sessionID]
}

// BeginTurn registers turnID as the session's current turn, so that
// tool-initiated log calls (log_thought) can find it without the tool
// layer needing to know about turn identity.
func (l *Logger) BeginTurn(sessionID, turnID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		l.active = make(map[string]string)
	}
	l.active[sessionID] = turnID
}

// Flush persists every buffered entry for the turn to Store in one
// batch and clears the in-memory buffer and sequence counter for that
// turn (spec.md §4.9: batch flush, not per-entry writes).
func (l *Logger) Flush(ctx context.Context, turnID string) error {
	l.mu.Lock()
	var toFlush []*store.ThinkingLog
	var rest []*store.ThinkingLog
	for _, e := range l.pending {
		if e.TurnID == turnID {
			toFlush = append(toFlush, e)
		} else {
			rest = append(rest, e)
		}
	}
	l.pending = rest
	delete(l.sequence, turnID)
	for sid, tid := range l.active {
		if tid == turnID {
			delete(l.active, sid)
		}
	}
	l.mu.Unlock()

	if len(toFlush) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { flushDuration.Observe(time.Since(start).Seconds()) }()

	if err := l.store.AppendThinkingLogs(ctx, toFlush); err != nil {
		l.logger.Error("failed to flush thinking log batch", "turn_id", turnID, "error", err)
		return fmt.Errorf("thinkinglog: flush turn %s: %w", turnID, err)
	}
	return nil
}
