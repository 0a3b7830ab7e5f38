package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/lexframe/lexframe/internal/idgen"
	"github.com/lexframe/lexframe/store"
)

type getContractByIDArgs struct {
	ContractID string `json:"contract_id" jsonschema:"required,description=The contract's opaque ID."`
}

type searchContractsArgs struct {
	Query string `json:"query" jsonschema:"required,description=Free-text search over contract titles."`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of results (default 20)."`
}

type partyArg struct {
	Name string `json:"name" jsonschema:"required"`
	Role string `json:"role" jsonschema:"required"`
}

type saveContractArgs struct {
	ContractID   *string    `json:"contract_id,omitempty" jsonschema:"description=Existing contract ID to update; omit to create a new contract."`
	Title        string     `json:"title" jsonschema:"required"`
	ContractType *string    `json:"contract_type,omitempty"`
	Parties      []partyArg `json:"parties,omitempty"`
	FileURI      string     `json:"file_uri" jsonschema:"required,description=Location of the uploaded document blob."`
}

func registerContractTools(r *Registry, deps Deps) {
	r.MustRegister(Definition{
		Name:        "get_contract_by_id",
		Description: "Fetch a contract's metadata, parties, and status by ID.",
		ArgsSample:  &getContractByIDArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*getContractByIDArgs)
			c, err := deps.Store.GetContract(ctx, args.ContractID)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})

	r.MustRegister(Definition{
		Name:        "search_contracts",
		Description: "Search previously uploaded contracts by title.",
		ArgsSample:  &searchContractsArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*searchContractsArgs)
			limit := args.Limit
			if limit <= 0 {
				limit = 20
			}
			return deps.Store.SearchContracts(ctx, args.Query, limit)
		},
	})

	r.MustRegister(Definition{
		Name:        "save_contract",
		Description: "Create a new contract record, or update an existing one when contract_id is given.",
		ArgsSample:  &saveContractArgs{},
		Handler: func(ctx context.Context, tc *Context, a any) (any, error) {
			args := a.(*saveContractArgs)
			parties := make([]store.Party, 0, len(args.Parties))
			for _, p := range args.Parties {
				parties = append(parties, store.Party{Name: p.Name, Role: p.Role})
			}

			if args.ContractID != nil {
				existing, err := deps.Store.GetContract(ctx, *args.ContractID)
				if err != nil {
					return nil, err
				}
				existing.Title = args.Title
				existing.ContractType = args.ContractType
				if len(parties) > 0 {
					existing.Parties = parties
				}
				if err := deps.Store.UpdateContract(ctx, existing); err != nil {
					return nil, fmt.Errorf("update contract: %w", err)
				}
				return existing, nil
			}

			c := &store.Contract{
				ID:               idgen.NewWithPrefix("ctr"),
				Title:            args.Title,
				ContractType:     args.ContractType,
				Parties:          parties,
				FileURI:          args.FileURI,
				UploadedAt:       time.Now(),
				Status:           store.ContractUploaded,
				ComplianceStatus: store.ComplianceUnknown,
			}
			if err := deps.Store.CreateContract(ctx, c); err != nil {
				return nil, fmt.Errorf("create contract: %w", err)
			}
			return c, nil
		},
	})
}
