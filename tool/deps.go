package tool

import (
	"context"

	"github.com/lexframe/lexframe/store"
)

// DocumentRenderer renders a GeneratedDocument's bytes for one of the
// document kinds the generate_document tool produces. Implemented by
// package codec; declared here so the tool group has no import
// dependency on the concrete rendering libraries.
type DocumentRenderer interface {
	RenderMemo(ctx context.Context, contract *store.Contract, clauses []*store.Clause) ([]byte, error)
	RenderSummary(ctx context.Context, contract *store.Contract, clauses []*store.Clause) ([]byte, error)
	RenderComplianceReport(ctx context.Context, contract *store.Contract, rules []*store.ComplianceRule) ([]byte, error)
}

// BlobStore persists rendered document bytes and returns a retrievable
// URI (spec.md's abstract BlobStore collaborator).
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte) (uri string, err error)
}

// ThoughtRecorder accepts an agent's explicit log_thought tool call.
// Implemented by package thinkinglog.
type ThoughtRecorder interface {
	RecordThought(ctx context.Context, sessionID, agentName, content string) error
}

// Deps bundles every collaborator the default tool definitions need.
// Built once at service-container construction and threaded into
// RegisterDefaults.
type Deps struct {
	Store     store.Store
	Documents DocumentRenderer
	Blobs     BlobStore
	Thoughts  ThoughtRecorder
}
