// Package contextbuilder implements the ContextBuilder (spec.md §4.4):
// assembling the system block, a bounded history window, and a
// contract digest into the message list handed to an agent's first
// model.Client call, under a token budget.
//
// Grounded on the teacher repo's context/conversation.go
// (ConversationHistory's bounded-window idiom, MaxMessages trimming)
// generalized to a digest-plus-history assembly, with concurrent Store
// reads via golang.org/x/sync/errgroup (the same package the teacher
// uses for parallel sub-agent fan-out in
// pkg/agent/workflowagent/parallel.go) and token accounting via
// pkoukk/tiktoken-go.
package contextbuilder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"

	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/store"
)

// DefaultHistoryWindow is the number of user/assistant message pairs
// included in history (spec.md §4.4, K=6).
const DefaultHistoryWindow = 6

// DefaultDigestClauseCount is the number of highest-risk clauses
// surfaced in the contract digest.
const DefaultDigestClauseCount = 5

// DefaultDigestCharCap bounds the digest's total size regardless of
// how many clauses are eligible.
const DefaultDigestCharCap = 2000

// DefaultTokenBudgetFraction is the share of the model's context
// window the assembled prompt may occupy before trimming further.
const DefaultTokenBudgetFraction = 0.75

// Builder assembles per-turn context.
type Builder struct {
	Store             store.Store
	HistoryWindow     int
	DigestClauseCount int
	DigestCharCap     int
	TokenBudgetModel  string // tiktoken encoding model name, e.g. "gpt-4"
	ModelMaxTokens    int
	BudgetFraction    float64
}

// New builds a Builder with spec.md defaults, overridable per field.
func New(s store.Store) *Builder {
	return &Builder{
		Store:             s,
		HistoryWindow:     DefaultHistoryWindow,
		DigestClauseCount: DefaultDigestClauseCount,
		DigestCharCap:     DefaultDigestCharCap,
		TokenBudgetModel:  "gpt-4",
		ModelMaxTokens:    128000,
		BudgetFraction:    DefaultTokenBudgetFraction,
	}
}

// Assembled is the per-turn context ready to hand to an agent's first
// model call.
type Assembled struct {
	SystemBlock string
	History     []model.Message
	TokenCount  int
}

// Build assembles the system block (agent instructions + contract
// digest) and a bounded history window, reading history and contract
// data concurrently since neither depends on the other (spec.md §5
// concurrency model).
func (b *Builder) Build(ctx context.Context, sessionID string, activeContractID *string, systemInstructions string) (*Assembled, error) {
	var history []*store.Message
	var digest string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := b.loadHistory(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		history = h
		return nil
	})
	if activeContractID != nil {
		g.Go(func() error {
			d, err := b.buildContractDigest(gctx, *activeContractID)
			if err != nil {
				return fmt.Errorf("build contract digest: %w", err)
			}
			digest = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	systemBlock := systemInstructions
	if digest != "" {
		systemBlock = systemInstructions + "\n\nActive contract digest:\n" + digest
	}

	messages := make([]model.Message, 0, len(history))
	for _, m := range history {
		role := string(m.Role)
		messages = append(messages, model.Message{Role: role, Content: m.Content})
	}

	assembled := &Assembled{SystemBlock: systemBlock, History: messages}
	assembled.TokenCount = b.countTokens(assembled)
	b.enforceBudget(assembled)
	return assembled, nil
}

// loadHistory fetches the most recent HistoryWindow user/assistant
// pairs, in chronological order.
func (b *Builder) loadHistory(ctx context.Context, sessionID string) ([]*store.Message, error) {
	limit := b.HistoryWindow * 2
	if limit <= 0 {
		limit = DefaultHistoryWindow * 2
	}
	msgs, err := b.Store.ListMessages(ctx, sessionID, limit, nil)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// buildContractDigest summarizes a contract's identity and its
// highest-risk clauses. Party names are extracted via Party.Name —
// never the whole Party record — and the digest is capped at
// DigestCharCap characters regardless of how many clauses qualify
// (spec.md §3 invariant, §4.4 cap).
func (b *Builder) buildContractDigest(ctx context.Context, contractID string) (string, error) {
	contract, err := b.Store.GetContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	clauses, err := b.Store.ListClauses(ctx, contractID)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(contract.Parties))
	for _, p := range contract.Parties {
		names = append(names, p.Name)
	}

	sort.Slice(clauses, func(i, j int) bool {
		ri, rj := riskOf(clauses[i]), riskOf(clauses[j])
		return ri > rj
	})
	top := clauses
	count := b.DigestClauseCount
	if count <= 0 {
		count = DefaultDigestClauseCount
	}
	if len(top) > count {
		top = top[:count]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nParties: %s\n", contract.Title, strings.Join(names, ", "))
	if contract.OverallRiskScore != nil {
		fmt.Fprintf(&sb, "Overall risk score: %.2f\n", *contract.OverallRiskScore)
	}
	fmt.Fprintf(&sb, "Top clauses by risk:\n")
	for _, c := range top {
		fmt.Fprintf(&sb, "- [%s] %s\n", c.Type, excerpt(c.Text, 200))
	}

	cap := b.DigestCharCap
	if cap <= 0 {
		cap = DefaultDigestCharCap
	}
	digest := sb.String()
	if len(digest) > cap {
		digest = digest[:cap]
	}
	return digest, nil
}

func riskOf(c *store.Clause) float64 {
	if c.RiskScore == nil {
		return 0
	}
	return *c.RiskScore
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// countTokens estimates the assembled context's token size. A
// tiktoken encoding lookup failure degrades to a conservative
// character-based estimate rather than failing the turn — token
// accounting is advisory, never a hard precondition for proceeding
// (spec.md §4.3's Usage contract applies the same way here).
func (b *Builder) countTokens(a *Assembled) int {
	enc, err := tiktoken.EncodingForModel(b.TokenBudgetModel)
	if err != nil {
		return (len(a.SystemBlock) + totalHistoryChars(a.History)) / 4
	}
	count := len(enc.Encode(a.SystemBlock, nil, nil))
	for _, m := range a.History {
		count += len(enc.Encode(m.Content, nil, nil))
	}
	return count
}

func totalHistoryChars(history []model.Message) int {
	total := 0
	for _, m := range history {
		total += len(m.Content)
	}
	return total
}

// enforceBudget trims the oldest history messages, in pairs, until the
// assembled context fits within BudgetFraction of ModelMaxTokens. The
// system block (instructions + digest) is never trimmed — it is
// already capped at construction time.
func (b *Builder) enforceBudget(a *Assembled) {
	budget := int(float64(b.ModelMaxTokens) * b.BudgetFraction)
	if budget <= 0 {
		return
	}
	for a.TokenCount > budget && len(a.History) >= 2 {
		a.History = a.History[2:]
		a.TokenCount = b.countTokens(a)
	}
}
