package contextbuilder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/store"
)

// fakeStore is a minimal in-memory store.Store sufficient for
// ContextBuilder's reads: ListMessages, GetContract, ListClauses.
type fakeStore struct {
	store.Store
	messages []*store.Message
	contract *store.Contract
	clauses  []*store.Clause
}

func (f *fakeStore) ListMessages(ctx context.Context, sessionID string, limit int, before *string) ([]*store.Message, error) {
	if limit > 0 && limit < len(f.messages) {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeStore) GetContract(ctx context.Context, id string) (*store.Contract, error) {
	return f.contract, nil
}

func (f *fakeStore) ListClauses(ctx context.Context, contractID string) ([]*store.Clause, error) {
	return f.clauses, nil
}

func risk(v float64) *float64 { return &v }

func TestBuild_NoActiveContract_OmitsDigest(t *testing.T) {
	fs := &fakeStore{messages: []*store.Message{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}}
	b := New(fs)

	assembled, err := b.Build(context.Background(), "s1", nil, "You are an assistant.")
	require.NoError(t, err)
	assert.Equal(t, "You are an assistant.", assembled.SystemBlock)
	assert.Len(t, assembled.History, 2)
}

func TestBuild_WithActiveContract_IncludesDigestSortedByRisk(t *testing.T) {
	fs := &fakeStore{
		contract: &store.Contract{Title: "MSA", Parties: []store.Party{{Name: "Acme"}, {Name: "Globex"}}},
		clauses: []*store.Clause{
			{Type: "termination", Text: "low risk clause", RiskScore: risk(0.1)},
			{Type: "indemnification", Text: "high risk clause", RiskScore: risk(0.9)},
		},
	}
	b := New(fs)
	contractID := "c1"

	assembled, err := b.Build(context.Background(), "s1", &contractID, "Parse this.")
	require.NoError(t, err)
	assert.Contains(t, assembled.SystemBlock, "Acme, Globex")
	// Highest-risk clause (indemnification) must appear before termination.
	idxHigh := indexOf(assembled.SystemBlock, "indemnification")
	idxLow := indexOf(assembled.SystemBlock, "termination")
	require.NotEqual(t, -1, idxHigh)
	require.NotEqual(t, -1, idxLow)
	assert.Less(t, idxHigh, idxLow)
}

func TestBuild_DigestNeverContainsPartyRoleField(t *testing.T) {
	fs := &fakeStore{
		contract: &store.Contract{Title: "NDA", Parties: []store.Party{{Name: "Acme", Role: "disclosing_party"}}},
	}
	b := New(fs)
	contractID := "c1"

	assembled, err := b.Build(context.Background(), "s1", &contractID, "instructions")
	require.NoError(t, err)
	assert.NotContains(t, assembled.SystemBlock, "disclosing_party")
}

func TestEnforceBudget_TrimsOldestHistoryInPairs(t *testing.T) {
	b := New(&fakeStore{})
	b.ModelMaxTokens = 15
	b.BudgetFraction = 1.0
	b.TokenBudgetModel = "unknown-model-forces-char-fallback"

	assembled := &Assembled{
		SystemBlock: "x",
		History: []model.Message{
			{Role: "user", Content: "oldest message here"},
			{Role: "assistant", Content: "oldest reply here"},
			{Role: "user", Content: "newest message here"},
			{Role: "assistant", Content: "newest reply here"},
		},
	}
	assembled.TokenCount = b.countTokens(assembled)
	b.enforceBudget(assembled)

	require.Len(t, assembled.History, 2)
	assert.Equal(t, "newest message here", assembled.History[0].Content)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
