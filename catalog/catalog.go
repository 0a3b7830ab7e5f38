// Package catalog implements the AgentCatalog (spec.md §4.5): the
// fixed roster of six specialized agents, each with its own system
// instructions, tool subset, grounded-search requirement, and model
// generation defaults.
//
// Grounded on the teacher repo's config/types.go AgentConfig (name,
// description, tool references, per-agent settings) and
// team/team.go's createDefaultAgentConfig factory idiom — generalized
// from one configurable agent template to six fixed specializations
// spec.md names.
package catalog

import (
	"fmt"

	"github.com/lexframe/lexframe/internal/registry"
	"github.com/lexframe/lexframe/model"
)

// Name identifies one of the six catalog agents.
type Name string

const (
	Assistant         Name = "ASSISTANT"
	ContractParser    Name = "CONTRACT_PARSER"
	LegalResearch     Name = "LEGAL_RESEARCH"
	ComplianceChecker Name = "COMPLIANCE_CHECKER"
	RiskAssessor      Name = "RISK_ASSESSOR"
	LegalMemo         Name = "LEGAL_MEMO"
)

// Agent is one catalog entry: its identity, behavior, and bounds.
type Agent struct {
	Name               Name
	Description        string
	SystemInstructions string
	ToolNames          []string
	GroundedSearch     bool
	DefaultOptions     model.Options
	MaxToolIterations  int
}

// Catalog is the immutable-after-startup set of available agents
// (spec.md §5).
type Catalog struct {
	agents registry.Registry[Agent]
}

// New builds the catalog populated with the six default specializations.
func New() *Catalog {
	c := &Catalog{agents: registry.New[Agent]()}
	for _, a := range defaultAgents() {
		if err := c.agents.Register(string(a.Name), a); err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
	}
	return c
}

// Get returns the agent definition for name.
func (c *Catalog) Get(name Name) (Agent, bool) {
	return c.agents.Get(string(name))
}

// All returns every registered agent, in registration order.
func (c *Catalog) All() []Agent {
	return c.agents.List()
}

func defaultAgents() []Agent {
	return []Agent{
		{
			Name:        Assistant,
			Description: "General-purpose conversational agent for questions that don't require document analysis.",
			SystemInstructions: "You are a helpful legal assistant. Answer the user's question directly. " +
				"If the question requires looking at a specific contract's clauses, risk, or compliance " +
				"standing, say so rather than guessing.",
			ToolNames:         []string{"log_thought"},
			DefaultOptions:    model.Options{Temperature: 0.4, MaxOutputTokens: 1024},
			MaxToolIterations: 6,
		},
		{
			Name:        ContractParser,
			Description: "Extracts structured clauses from an uploaded contract's raw text.",
			SystemInstructions: "You segment a contract's raw text into individual clauses. For each clause " +
				"identify its type (e.g. indemnification, termination, limitation_of_liability, non_compete, " +
				"auto_renewal, governing_law), preserve its original text, and save the result. Never " +
				"fabricate a clause that is not present in the source text.",
			ToolNames:         []string{"extract_clauses", "save_clauses", "get_clauses_by_type", "log_thought"},
			DefaultOptions:    model.Options{Temperature: 0.2, MaxOutputTokens: 4096},
			MaxToolIterations: 6,
		},
		{
			Name:        LegalResearch,
			Description: "Answers questions requiring current legal or regulatory context, with citations.",
			SystemInstructions: "You research legal and regulatory questions. Ground every substantive claim " +
				"in a citation. If grounded search is unavailable, say so explicitly rather than answering " +
				"from memory as if it were current.",
			ToolNames:         []string{"log_thought"},
			GroundedSearch:    true,
			DefaultOptions:    model.Options{Temperature: 0.3, MaxOutputTokens: 2048, GroundedSearch: true},
			MaxToolIterations: 6,
		},
		{
			Name:        ComplianceChecker,
			Description: "Checks a contract's clauses against applicable regulatory rules.",
			SystemInstructions: "You check a contract's saved clauses against the reference compliance rules " +
				"for its applicable regulations. Report which rules are covered, which are not, and why, " +
				"without overstating certainty the underlying match heuristic does not support.",
			ToolNames:         []string{"get_applicable_regulations", "get_compliance_rules", "check_compliance", "get_clauses_by_type", "log_thought"},
			DefaultOptions:    model.Options{Temperature: 0.2, MaxOutputTokens: 2048},
			MaxToolIterations: 6,
		},
		{
			Name:        RiskAssessor,
			Description: "Scores individual clauses and a contract's overall risk against benchmarks.",
			SystemInstructions: "You assess legal risk. Score each relevant clause, compute the contract's " +
				"overall risk, and compare it against typical benchmarks for its contract type. Explain the " +
				"factors driving any clause you flag as high risk.",
			ToolNames:         []string{"get_clauses_by_type", "calculate_clause_risk", "calculate_overall_risk", "get_risk_benchmarks", "log_thought"},
			DefaultOptions:    model.Options{Temperature: 0.2, MaxOutputTokens: 2048},
			MaxToolIterations: 6,
		},
		{
			Name:        LegalMemo,
			Description: "Synthesizes the pipeline's findings into a final memo, summary, or compliance report.",
			SystemInstructions: "You synthesize the findings produced earlier in this turn's pipeline into a " +
				"clear, well-organized response for the user. When the user asked for a document, generate " +
				"it. Preserve every citation surfaced by an earlier agent; never drop one silently.",
			ToolNames:         []string{"generate_document", "list_documents", "log_thought"},
			DefaultOptions:    model.Options{Temperature: 0.4, MaxOutputTokens: 4096},
			MaxToolIterations: 6,
		},
	}
}
