package tool

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/store"
)

type generateDocumentArgs struct {
	SessionID  string `json:"session_id" jsonschema:"required"`
	ContractID string `json:"contract_id" jsonschema:"required"`
	Kind       string `json:"kind" jsonschema:"required,enum=memo,enum=summary,enum=compliance_report"`
}

type listDocumentsArgs struct {
	SessionID string `json:"session_id" jsonschema:"required"`
}

func registerDocumentTools(r *Registry, deps Deps) {
	r.MustRegister(Definition{
		Name:        "generate_document",
		Description: "Render and store a memo, summary, or compliance report document for a contract.",
		ArgsSample:  &generateDocumentArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*generateDocumentArgs)
			kind := store.DocumentKind(args.Kind)

			contract, err := deps.Store.GetContract(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}
			clauses, err := deps.Store.ListClauses(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}

			var content []byte
			switch kind {
			case store.DocumentMemo:
				content, err = deps.Documents.RenderMemo(ctx, contract, clauses)
			case store.DocumentSummary:
				content, err = deps.Documents.RenderSummary(ctx, contract, clauses)
			case store.DocumentComplianceReport:
				var rules []*store.ComplianceRule
				for _, regulation := range regulationsByContractType[derefOr(contract.ContractType, "")] {
					regRules, rerr := deps.Store.ListComplianceRules(ctx, regulation)
					if rerr != nil {
						return nil, rerr
					}
					rules = append(rules, regRules...)
				}
				content, err = deps.Documents.RenderComplianceReport(ctx, contract, rules)
			default:
				return nil, fmt.Errorf("unsupported document kind %q", args.Kind)
			}
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", kind, err)
			}

			uri, err := deps.Blobs.Put(ctx, idgen.NewWithPrefix("doc"), content)
			if err != nil {
				return nil, fmt.Errorf("store document blob: %w", err)
			}

			doc := &store.GeneratedDocument{
				ID:        idgen.NewWithPrefix("doc"),
				SessionID: args.SessionID,
				Kind:      kind,
				FileURI:   uri,
			}
			if err := deps.Store.CreateGeneratedDocument(ctx, doc); err != nil {
				return nil, fmt.Errorf("persist generated document: %w", err)
			}
			return doc, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "list_documents",
		Description: "List documents generated so far in this session.",
		ArgsSample:  &listDocumentsArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*listDocumentsArgs)
			return deps.Store.ListGeneratedDocuments(ctx, args.SessionID)
		},
	})
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
