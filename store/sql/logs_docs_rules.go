package sql

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/store"
)

func (s *Store) AppendThinkingLogs(ctx context.Context, logs []*store.ThinkingLog) error {
	if len(logs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range logs {
		payloadJSON, err := marshalJSON(l.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO thinking_logs (id, session_id, turn_id, sequence, agent_name, stage, payload, duration_ms, created_at)
			 VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`,`+s.placeholder(6)+`,`+s.placeholder(7)+`,`+s.placeholder(8)+`,`+s.placeholder(9)+`)`,
			l.ID, l.SessionID, l.TurnID, l.Sequence, l.AgentName, string(l.Stage), payloadJSON, l.DurationMS, l.CreatedAt); err != nil {
			return fmt.Errorf("append thinking log: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListThinkingLogs(ctx context.Context, sessionID string, turnID *string) ([]*store.ThinkingLog, error) {
	query := `SELECT id, session_id, turn_id, sequence, agent_name, stage, payload, duration_ms, created_at
	          FROM thinking_logs WHERE session_id = ` + s.placeholder(1)
	args := []any{sessionID}
	if turnID != nil {
		query += ` AND turn_id = ` + s.placeholder(2)
		args = append(args, *turnID)
	}
	query += ` ORDER BY turn_id ASC, sequence ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list thinking logs: %w", err)
	}
	defer rows.Close()

	var out []*store.ThinkingLog
	for rows.Next() {
		var l store.ThinkingLog
		var stage, payloadJSON string
		if err := rows.Scan(&l.ID, &l.SessionID, &l.TurnID, &l.Sequence, &l.AgentName, &stage, &payloadJSON, &l.DurationMS, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thinking log: %w", err)
		}
		l.Stage = store.Stage(stage)
		if err := unmarshalJSON(payloadJSON, &l.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (s *Store) CreateGeneratedDocument(ctx context.Context, d *store.GeneratedDocument) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_documents (id, session_id, kind, file_uri, created_at) VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`)`,
		d.ID, d.SessionID, string(d.Kind), d.FileURI, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create generated document: %w", err)
	}
	return nil
}

func (s *Store) ListGeneratedDocuments(ctx context.Context, sessionID string) ([]*store.GeneratedDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, file_uri, created_at FROM generated_documents WHERE session_id = `+s.placeholder(1)+` ORDER BY created_at ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list generated documents: %w", err)
	}
	defer rows.Close()

	var out []*store.GeneratedDocument
	for rows.Next() {
		var d store.GeneratedDocument
		var kind string
		if err := rows.Scan(&d.ID, &d.SessionID, &kind, &d.FileURI, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated document: %w", err)
		}
		d.Kind = store.DocumentKind(kind)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *Store) ListComplianceRules(ctx context.Context, regulation string) ([]*store.ComplianceRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT regulation, rule_id, text, category, severity FROM compliance_rules WHERE regulation = `+s.placeholder(1)+` ORDER BY rule_id ASC`,
		regulation)
	if err != nil {
		return nil, fmt.Errorf("list compliance rules: %w", err)
	}
	defer rows.Close()

	var out []*store.ComplianceRule
	for rows.Next() {
		var r store.ComplianceRule
		if err := rows.Scan(&r.Regulation, &r.RuleID, &r.Text, &r.Category, &r.Severity); err != nil {
			return nil, fmt.Errorf("scan compliance rule: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// SeedComplianceRules inserts reference regulatory rules if not already
// present — used by tests and by first-run bootstrap since compliance
// rules are read-mostly reference data, not user-generated.
func (s *Store) SeedComplianceRules(ctx context.Context, rules []*store.ComplianceRule) error {
	for _, r := range rules {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO compliance_rules (regulation, rule_id, text, category, severity) VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`) ON CONFLICT (regulation, rule_id) DO NOTHING`,
			r.Regulation, r.RuleID, r.Text, r.Category, r.Severity)
		if err != nil {
			// Duplicate keys on reseed are absorbed by ON CONFLICT; surface anything else.
			return fmt.Errorf("seed compliance rule: %w", err)
		}
	}
	return nil
}
