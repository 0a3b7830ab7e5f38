package tool

import (
	"context"
	"strings"
)

type calculateClauseRiskArgs struct {
	ClauseType string `json:"clause_type" jsonschema:"required"`
	ClauseText string `json:"clause_text" jsonschema:"required"`
}

type calculateOverallRiskArgs struct {
	ContractID string `json:"contract_id" jsonschema:"required"`
}

type getRiskBenchmarksArgs struct {
	ContractType string `json:"contract_type" jsonschema:"required"`
}

// highRiskClauseTypes and their base severity weight — reference data
// an underwriting or legal-ops team would normally curate and tune;
// here it grounds a deterministic, explainable score the RISK_ASSESSOR
// agent can cite rather than an opaque model judgment.
var highRiskClauseTypes = map[string]float64{
	"indemnification":      0.7,
	"limitation_of_liability": 0.6,
	"termination":          0.4,
	"non_compete":          0.5,
	"auto_renewal":         0.5,
	"liquidated_damages":   0.6,
	"governing_law":        0.2,
}

// riskEscalationTerms nudge the base weight up when present verbatim —
// a crude but auditable signal the agent's own narrative can point to.
var riskEscalationTerms = []string{"unlimited", "sole discretion", "perpetual", "irrevocable", "without notice"}

func registerRiskTools(r *Registry, deps Deps) {
	r.MustRegister(Definition{
		Name:        "calculate_clause_risk",
		Description: "Score one clause's risk on a 0-1 scale using its type and text.",
		ArgsSample:  &calculateClauseRiskArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*calculateClauseRiskArgs)
			score := clauseRiskScore(args.ClauseType, args.ClauseText)
			return map[string]any{"clause_type": args.ClauseType, "risk_score": score}, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "calculate_overall_risk",
		Description: "Aggregate a contract's saved clause risk scores into an overall score and persist it on the contract.",
		ArgsSample:  &calculateOverallRiskArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*calculateOverallRiskArgs)
			clauses, err := deps.Store.ListClauses(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}

			var sum float64
			var scored int
			for _, c := range clauses {
				if c.RiskScore != nil {
					sum += *c.RiskScore
					scored++
				} else {
					s := clauseRiskScore(c.Type, c.Text)
					sum += s
					scored++
				}
			}

			var overall float64
			if scored > 0 {
				overall = sum / float64(scored)
			}

			if contract, err := deps.Store.GetContract(ctx, args.ContractID); err == nil {
				contract.OverallRiskScore = &overall
				_ = deps.Store.UpdateContract(ctx, contract)
			}

			return map[string]any{"contract_id": args.ContractID, "overall_risk_score": overall, "clauses_scored": scored}, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "get_risk_benchmarks",
		Description: "Return typical risk benchmarks for a contract type, for comparison against a specific contract's score.",
		ArgsSample:  &getRiskBenchmarksArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*getRiskBenchmarksArgs)
			return riskBenchmark(args.ContractType), nil
		},
	})
}

func clauseRiskScore(clauseType, text string) float64 {
	base, ok := highRiskClauseTypes[clauseType]
	if !ok {
		base = 0.3
	}
	lower := strings.ToLower(text)
	for _, term := range riskEscalationTerms {
		if strings.Contains(lower, term) {
			base += 0.1
		}
	}
	if base > 1.0 {
		base = 1.0
	}
	return base
}

func riskBenchmark(contractType string) map[string]any {
	benchmarks := map[string]float64{
		"data_processing_agreement": 0.45,
		"employment_agreement":      0.35,
		"vendor_agreement":          0.4,
		"healthcare_services":       0.5,
	}
	typical, ok := benchmarks[contractType]
	if !ok {
		typical = 0.4
	}
	return map[string]any{"contract_type": contractType, "typical_overall_risk_score": typical}
}
