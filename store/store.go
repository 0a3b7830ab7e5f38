package store

import "context"

// Store is the abstract document database. Implementations must satisfy
// spec.md §4.2's ordering contract: the caller (SessionOrchestrator) is
// responsible for write ordering (user Message before the turn begins,
// ThinkingLogs as they accumulate, assistant Message last) — Store itself
// only guarantees that each individual write is durable once it returns.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error

	// Messages
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionID string, limit int, before *string) ([]*Message, error)

	// Contracts
	CreateContract(ctx context.Context, c *Contract) error
	GetContract(ctx context.Context, id string) (*Contract, error)
	UpdateContract(ctx context.Context, c *Contract) error
	SearchContracts(ctx context.Context, query string, limit int) ([]*Contract, error)

	// Clauses
	ListClauses(ctx context.Context, contractID string) ([]*Clause, error)
	SaveClauses(ctx context.Context, contractID string, clauses []*Clause) error

	// Thinking logs
	AppendThinkingLogs(ctx context.Context, logs []*ThinkingLog) error
	ListThinkingLogs(ctx context.Context, sessionID string, turnID *string) ([]*ThinkingLog, error)

	// Generated documents
	CreateGeneratedDocument(ctx context.Context, d *GeneratedDocument) error
	ListGeneratedDocuments(ctx context.Context, sessionID string) ([]*GeneratedDocument, error)

	// Compliance rules (read-mostly reference data)
	ListComplianceRules(ctx context.Context, regulation string) ([]*ComplianceRule, error)

	Close() error
}

// NotFoundError is returned by Get-style lookups when the id is unknown.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found: " + e.ID
}
