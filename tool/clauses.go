package tool

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/store"
)

// TextExtractor pulls raw text out of an uploaded contract's blob.
// Implemented by package codec against PDF/DOCX sources; the tool
// layer never parses document formats itself.
type TextExtractor interface {
	ExtractText(ctx context.Context, fileURI string) (string, error)
}

type extractClausesArgs struct {
	ContractID string `json:"contract_id" jsonschema:"required"`
}

type getClausesByTypeArgs struct {
	ContractID string `json:"contract_id" jsonschema:"required"`
	ClauseType string `json:"clause_type" jsonschema:"required,description=e.g. indemnification, termination, liability_cap."`
}

type clauseArg struct {
	Index     int      `json:"index" jsonschema:"required"`
	Type      string   `json:"type" jsonschema:"required"`
	Text      string   `json:"text" jsonschema:"required"`
	RiskScore *float64 `json:"risk_score,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

type saveClausesArgs struct {
	ContractID string      `json:"contract_id" jsonschema:"required"`
	Clauses    []clauseArg `json:"clauses" jsonschema:"required"`
}

func registerClauseTools(r *Registry, deps Deps, extractor TextExtractor) {
	r.MustRegister(Definition{
		Name:        "extract_clauses",
		Description: "Return the contract's raw document text for clause-by-clause analysis. Does not itself identify clauses — follow up with save_clauses once you've segmented the text.",
		ArgsSample:  &extractClausesArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*extractClausesArgs)
			contract, err := deps.Store.GetContract(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}
			text, err := extractor.ExtractText(ctx, contract.FileURI)
			if err != nil {
				return nil, fmt.Errorf("extract text: %w", err)
			}
			return map[string]any{"contract_id": args.ContractID, "text": text}, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "get_clauses_by_type",
		Description: "List previously saved clauses of a given type for a contract.",
		ArgsSample:  &getClausesByTypeArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*getClausesByTypeArgs)
			all, err := deps.Store.ListClauses(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}
			out := make([]*store.Clause, 0, len(all))
			for _, c := range all {
				if c.Type == args.ClauseType {
					out = append(out, c)
				}
			}
			return out, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "save_clauses",
		Description: "Replace the clause set for a contract with the given segmented clauses.",
		ArgsSample:  &saveClausesArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*saveClausesArgs)
			clauses := make([]*store.Clause, 0, len(args.Clauses))
			for _, c := range args.Clauses {
				clauses = append(clauses, &store.Clause{
					ID:         idgen.NewWithPrefix("cls"),
					ContractID: args.ContractID,
					Index:      c.Index,
					Type:       c.Type,
					Text:       c.Text,
					RiskScore:  c.RiskScore,
					Notes:      c.Notes,
				})
			}
			if err := deps.Store.SaveClauses(ctx, args.ContractID, clauses); err != nil {
				return nil, fmt.Errorf("save clauses: %w", err)
			}
			return map[string]any{"contract_id": args.ContractID, "saved": len(clauses)}, nil
		},
	})
}
