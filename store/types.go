// Package store defines the abstract document database the orchestration
// runtime reads and writes — sessions, messages, contracts, clauses,
// thinking logs, generated documents, and compliance rules. It is a thin,
// typed interface with no business logic (spec.md §4.2); the only
// concrete implementation shipped here is store/sql, a database/sql
// backend selectable between SQLite (dev/test) and Postgres (production).
package store

import "time"

// Role is a Message's author role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ComplianceStatus summarizes a Contract's regulatory standing.
type ComplianceStatus string

const (
	ComplianceUnknown       ComplianceStatus = "unknown"
	ComplianceCompliant     ComplianceStatus = "compliant"
	CompliancePartial       ComplianceStatus = "partial"
	ComplianceNonCompliant  ComplianceStatus = "non-compliant"
)

// ContractStatus tracks where an uploaded contract is in its lifecycle.
type ContractStatus string

const (
	ContractUploaded ContractStatus = "uploaded"
	ContractParsing  ContractStatus = "parsing"
	ContractReady    ContractStatus = "ready"
	ContractFailed   ContractStatus = "failed"
)

// Stage is the kind of event recorded in a ThinkingLog.
type Stage string

const (
	StageClassify    Stage = "classify"
	StageAgentStart  Stage = "agent_start"
	StageToolCall    Stage = "tool_call"
	StageToolResult  Stage = "tool_result"
	StageAgentOutput Stage = "agent_output"
	StageError       Stage = "error"
)

// DocumentKind is the kind of a GeneratedDocument.
type DocumentKind string

const (
	DocumentMemo             DocumentKind = "memo"
	DocumentSummary          DocumentKind = "summary"
	DocumentComplianceReport DocumentKind = "compliance_report"
)

// Session is a conversation container.
type Session struct {
	ID               string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Title            *string
	ActiveContractID *string
	MessageCount     int
}

// Citation is a grounded-search attribution.
type Citation struct {
	Title string
	URI   string
	Start *int
	End   *int
}

// Message is one turn-half within a session.
type Message struct {
	ID                string
	SessionID         string
	Role              Role
	Content           string
	AgentName         *string
	Citations         []Citation
	ToolCallsSummary  []string
	CreatedAt         time.Time
}

// Party is a named participant in a Contract. Party serialization for LLM
// context must always extract .Name — never stringify the whole record
// (spec.md §3 invariant).
type Party struct {
	Name string
	Role string
}

// Contract is an uploaded legal document and its top-level metadata.
type Contract struct {
	ID                 string
	Title              string
	ContractType       *string
	Parties            []Party
	UploadedAt         time.Time
	FileURI            string
	Status             ContractStatus
	OverallRiskScore    *float64
	ComplianceStatus   ComplianceStatus
}

// Clause is one extracted clause of a Contract.
type Clause struct {
	ID         string
	ContractID string
	Index      int
	Type       string
	Text       string
	RiskScore  *float64
	Notes      *string
}

// ThinkingLog is one append-only audit record within a turn.
type ThinkingLog struct {
	ID         string
	SessionID  string
	TurnID     string
	Sequence   int
	AgentName  string
	Stage      Stage
	Payload    map[string]any
	DurationMS int64
	CreatedAt  time.Time
}

// GeneratedDocument is an artifact produced by the document tool group.
type GeneratedDocument struct {
	ID        string
	SessionID string
	Kind      DocumentKind
	FileURI   string
	CreatedAt time.Time
}

// ComplianceRule is read-mostly reference data.
type ComplianceRule struct {
	Regulation string
	RuleID     string
	Text       string
	Category   string
	Severity   string
}
