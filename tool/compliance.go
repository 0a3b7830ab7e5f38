package tool

import (
	"context"
	"strings"

	"github.com/lexframe/lexframe/store"
)

type getComplianceRulesArgs struct {
	Regulation string `json:"regulation" jsonschema:"required,description=e.g. GDPR, CCPA, HIPAA."`
}

type getApplicableRegulationsArgs struct {
	ContractType string `json:"contract_type" jsonschema:"required"`
}

type checkComplianceArgs struct {
	ContractID string `json:"contract_id" jsonschema:"required"`
	Regulation string `json:"regulation" jsonschema:"required"`
}

// regulationsByContractType is reference data mapping a contract type
// to the regulations a compliance review should check it against.
// Real deployments would source this from the same regulatory feed
// that seeds compliance_rules; it is static here since the spec names
// no external regulatory feed as an abstract collaborator.
var regulationsByContractType = map[string][]string{
	"data_processing_agreement": {"GDPR", "CCPA"},
	"employment_agreement":      {"FLSA", "FMLA"},
	"healthcare_services":       {"HIPAA"},
	"vendor_agreement":          {"CCPA"},
}

type complianceFinding struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Matched  bool   `json:"matched"`
	Excerpt  string `json:"excerpt,omitempty"`
}

func registerComplianceTools(r *Registry, deps Deps) {
	r.MustRegister(Definition{
		Name:        "get_compliance_rules",
		Description: "List the reference compliance rules for a regulation.",
		ArgsSample:  &getComplianceRulesArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*getComplianceRulesArgs)
			return deps.Store.ListComplianceRules(ctx, args.Regulation)
		},
	})

	r.MustRegister(Definition{
		Name:        "get_applicable_regulations",
		Description: "List the regulations typically applicable to a contract type.",
		ArgsSample:  &getApplicableRegulationsArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*getApplicableRegulationsArgs)
			return regulationsByContractType[args.ContractType], nil
		},
	})

	r.MustRegister(Definition{
		Name:        "check_compliance",
		Description: "Check a contract's saved clauses against a regulation's reference rules and report which rules appear covered.",
		ArgsSample:  &checkComplianceArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*checkComplianceArgs)
			rules, err := deps.Store.ListComplianceRules(ctx, args.Regulation)
			if err != nil {
				return nil, err
			}
			clauses, err := deps.Store.ListClauses(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}

			findings := make([]complianceFinding, 0, len(rules))
			for _, rule := range rules {
				finding := complianceFinding{RuleID: rule.RuleID, Category: rule.Category, Severity: rule.Severity}
				for _, clause := range clauses {
					if categoryMatchesClause(rule.Category, clause) {
						finding.Matched = true
						finding.Excerpt = excerpt(clause.Text, 160)
						break
					}
				}
				findings = append(findings, finding)
			}

			status := summarizeComplianceStatus(findings)
			if contract, err := deps.Store.GetContract(ctx, args.ContractID); err == nil {
				contract.ComplianceStatus = status
				_ = deps.Store.UpdateContract(ctx, contract)
			}

			return map[string]any{
				"contract_id": args.ContractID,
				"regulation":  args.Regulation,
				"status":      status,
				"findings":    findings,
			}, nil
		},
	})
}

// categoryMatchesClause is a lightweight keyword heuristic: a rule
// category matches a clause when the clause type or text mentions the
// category. A production system would ground this in embeddings or an
// LLM judgment call made by the calling agent; this tool only supplies
// the raw surface for that judgment, so the heuristic only needs to be
// good enough to narrow candidates, not to be authoritative.
func categoryMatchesClause(category string, clause *store.Clause) bool {
	needle := strings.ToLower(category)
	return strings.Contains(strings.ToLower(clause.Type), needle) || strings.Contains(strings.ToLower(clause.Text), needle)
}

func summarizeComplianceStatus(findings []complianceFinding) store.ComplianceStatus {
	if len(findings) == 0 {
		return store.ComplianceUnknown
	}
	matched := 0
	for _, f := range findings {
		if f.Matched {
			matched++
		}
	}
	switch {
	case matched == len(findings):
		return store.ComplianceCompliant
	case matched == 0:
		return store.ComplianceNonCompliant
	default:
		return store.CompliancePartial
	}
}

func excerpt(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
