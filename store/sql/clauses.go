package sql

import (
	"context"
	"fmt"

	"github.com/lexframe/lexframe/store"
)

func (s *Store) ListClauses(ctx context.Context, contractID string) ([]*store.Clause, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contract_id, idx, type, text, risk_score, notes FROM clauses WHERE contract_id = `+s.placeholder(1)+` ORDER BY idx ASC`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	var out []*store.Clause
	for rows.Next() {
		var c store.Clause
		if err := rows.Scan(&c.ID, &c.ContractID, &c.Index, &c.Type, &c.Text, &c.RiskScore, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SaveClauses replaces the clause set for a contract. Re-running clause
// extraction on an unchanged contract is expected to yield an identical
// clause sequence (spec.md §8 round-trip law), so this is a full
// replace rather than an append.
func (s *Store) SaveClauses(ctx context.Context, contractID string, clauses []*store.Clause) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clauses WHERE contract_id = `+s.placeholder(1), contractID); err != nil {
		return fmt.Errorf("clear clauses: %w", err)
	}

	for _, c := range clauses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clauses (id, contract_id, idx, type, text, risk_score, notes)
			 VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`,`+s.placeholder(6)+`,`+s.placeholder(7)+`)`,
			c.ID, contractID, c.Index, c.Type, c.Text, c.RiskScore, c.Notes); err != nil {
			return fmt.Errorf("insert clause: %w", err)
		}
	}

	return tx.Commit()
}
