package sql

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/store"
)

func (s *Store) CreateMessage(ctx context.Context, m *store.Message) error {
	citationsJSON, err := marshalJSON(m.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	toolsJSON, err := marshalJSON(m.ToolCallsSummary)
	if err != nil {
		return fmt.Errorf("marshal tool calls summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, agent_name, citations, tool_calls_summary, created_at)
		 VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`,`+s.placeholder(6)+`,`+s.placeholder(7)+`,`+s.placeholder(8)+`)`,
		m.ID, m.SessionID, string(m.Role), m.Content, m.AgentName, citationsJSON, toolsJSON, m.CreatedAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET message_count = message_count + 1, updated_at = `+s.placeholder(1)+` WHERE id = `+s.placeholder(2),
		m.CreatedAt, m.SessionID); err != nil {
		return fmt.Errorf("bump message_count: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ListMessages(ctx context.Context, sessionID string, limit int, before *string) ([]*store.Message, error) {
	query := `SELECT id, session_id, role, content, agent_name, citations, tool_calls_summary, created_at
	          FROM messages WHERE session_id = ` + s.placeholder(1)
	args := []any{sessionID}

	if before != nil {
		query += ` AND id < ` + s.placeholder(2)
		args = append(args, *before)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*store.Message
	for rows.Next() {
		var m store.Message
		var role, citationsJSON, toolsJSON string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.AgentName, &citationsJSON, &toolsJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = store.Role(role)
		if err := unmarshalJSON(citationsJSON, &m.Citations); err != nil {
			return nil, fmt.Errorf("unmarshal citations: %w", err)
		}
		if err := unmarshalJSON(toolsJSON, &m.ToolCallsSummary); err != nil {
			return nil, fmt.Errorf("unmarshal tool calls summary: %w", err)
		}
		out = append(out, &m)
	}

	// Reverse to chronological order (oldest first) for the caller's
	// convenience — spec.md orders messages within a session by
	// created_at then id.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}
