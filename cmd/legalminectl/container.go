package main

import (
	"fmt"
	"time"

	"github.com/lexframe/lexframe/catalog"
	"github.com/lexframe/lexframe/classifier"
	"github.com/lexframe/lexframe/codec"
	"github.com/lexframe/lexframe/config"
	"github.com/lexframe/lexframe/contextbuilder"
	"github.com/lexframe/lexframe/model"
	"github.com/lexframe/lexframe/model/anthropic"
	"github.com/lexframe/lexframe/model/mock"
	"github.com/lexframe/lexframe/model/openai"
	"github.com/lexframe/lexframe/orchestrator"
	"github.com/lexframe/lexframe/runner"
	sqlstore "github.com/lexframe/lexframe/store/sql"
	"github.com/lexframe/lexframe/thinkinglog"
	"github.com/lexframe/lexframe/tool"
)

// container bundles every constructed collaborator a subcommand needs.
// Built once per invocation and passed explicitly — no globals, no
// package-level singletons, matching spec.md's "abstract collaborator,
// wired once" design note.
type container struct {
	store   *sqlstore.Store
	blobs   *codec.FileBlobStore
	orch    *orchestrator.Orchestrator
}

func buildContainer(configPath string) (*container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := sqlstore.NewFromConfig(&sqlstore.Config{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	blobs, err := codec.NewFileBlobStore(cfg.Store.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	modelClient, err := buildModelClient(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("build model client: %w", err)
	}

	extractor := codec.NewTextExtractor(blobs)
	renderer := codec.NewRenderer()
	tl := thinkinglog.New(st)

	deps := tool.Deps{
		Store:     st,
		Documents: renderer,
		Blobs:     blobs,
		Thoughts:  tl,
	}
	tools := tool.RegisterDefaults(deps, extractor)

	cat := catalog.New()
	cls := classifier.New(modelClient)
	cb := contextbuilder.New(st)
	cb.HistoryWindow = cfg.Runtime.HistoryWindowPairs
	cb.BudgetFraction = cfg.Runtime.ContextTokenBudgetFraction

	rn := runner.New(modelClient, tools)
	rn.Timeout = time.Duration(cfg.Runtime.AgentTurnTimeoutSeconds) * time.Second

	orch := orchestrator.New(st, cat, cls, cb, rn, tl)
	orch.RequestTimeout = time.Duration(cfg.Runtime.RequestTimeoutSeconds) * time.Second

	return &container{store: st, blobs: blobs, orch: orch}, nil
}

func buildModelClient(cfg config.ModelConfig) (model.Client, error) {
	timeout, _ := time.ParseDuration(cfg.Timeout)

	switch cfg.Provider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:                   cfg.APIKey,
			Model:                    cfg.Model,
			Host:                     cfg.Host,
			Timeout:                  timeout,
			RequireGroundedBackend:   cfg.UseGroundedBackend,
			ManagedIdentityAvailable: cfg.ManagedIdentityAvailable,
		})
	case "mock":
		return mock.New(), nil
	default:
		return anthropic.New(anthropic.Config{
			APIKey:                   cfg.APIKey,
			Model:                    cfg.Model,
			Host:                     cfg.Host,
			Timeout:                  timeout,
			RequireGroundedBackend:   cfg.UseGroundedBackend,
			ManagedIdentityAvailable: cfg.ManagedIdentityAvailable,
		})
	}
}

func (c *container) Close() error {
	return c.store.Close()
}
