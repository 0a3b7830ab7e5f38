package thinkinglog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/store"
)

type fakeStore struct {
	store.Store
	flushed []*store.ThinkingLog
}

func (f *fakeStore) AppendThinkingLogs(ctx context.Context, logs []*store.ThinkingLog) error {
	f.flushed = append(f.flushed, logs...)
	return nil
}

func TestAppend_SequenceIsMonotonicPerTurn(t *testing.T) {
	l := New(&fakeStore{})
	l.Append("s1", "t1", "AGENT", store.StageAgentStart, map[string]any{}, 0)
	l.Append("s1", "t1", "AGENT", store.StageAgentOutput, map[string]any{}, 0)
	l.Append("s1", "t2", "AGENT", store.StageAgentStart, map[string]any{}, 0)

	require.Len(t, l.pending, 3)
	assert.Equal(t, 1, l.pending[0].Sequence)
	assert.Equal(t, 2, l.pending[1].Sequence)
	assert.Equal(t, 1, l.pending[2].Sequence, "a different turn starts its own sequence at 1")
}

func TestRecordThought_RequiresAnActiveTurn(t *testing.T) {
	l := New(&fakeStore{})
	err := l.RecordThought(context.Background(), "s1", "AGENT", "no turn has begun")
	assert.Error(t, err)
}

func TestRecordThought_AttachesToSessionsCurrentTurn(t *testing.T) {
	l := New(&fakeStore{})
	l.BeginTurn("s1", "t1")

	err := l.RecordThought(context.Background(), "s1", "AGENT", "thinking...")
	require.NoError(t, err)
	require.Len(t, l.pending, 1)
	assert.Equal(t, "t1", l.pending[0].TurnID)
	assert.Equal(t, "thinking...", l.pending[0].Payload["thought"])
}

func TestFlush_PartitionsPendingEntriesByTurnID(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs)
	l.Append("s1", "t1", "AGENT", store.StageAgentStart, map[string]any{}, 0)
	l.Append("s2", "t2", "AGENT", store.StageAgentStart, map[string]any{}, 0)
	l.Append("s1", "t1", "AGENT", store.StageAgentOutput, map[string]any{}, 0)

	require.NoError(t, l.Flush(context.Background(), "t1"))

	assert.Len(t, fs.flushed, 2)
	for _, e := range fs.flushed {
		assert.Equal(t, "t1", e.TurnID)
	}
	require.Len(t, l.pending, 1)
	assert.Equal(t, "t2", l.pending[0].TurnID)
}

func TestFlush_ClearsSequenceCounterForFlushedTurn(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs)
	l.Append("s1", "t1", "AGENT", store.StageAgentStart, map[string]any{}, 0)
	require.NoError(t, l.Flush(context.Background(), "t1"))

	_, ok := l.sequence["t1"]
	assert.False(t, ok)
}

func TestFlush_NoEntriesForTurnIsANoOp(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs)
	require.NoError(t, l.Flush(context.Background(), "nonexistent-turn"))
	assert.Empty(t, fs.flushed)
}

func TestAppend_RecordsDurationInMilliseconds(t *testing.T) {
	l := New(&fakeStore{})
	l.Append("s1", "t1", "AGENT", store.StageToolCall, map[string]any{}, 250*time.Millisecond)
	require.Len(t, l.pending, 1)
	assert.Equal(t, int64(250), l.pending[0].DurationMS)
}
