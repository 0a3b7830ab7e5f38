package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lexframe/lexframe/store"
)

func (s *Store) CreateContract(ctx context.Context, c *store.Contract) error {
	partiesJSON, err := marshalJSON(c.Parties)
	if err != nil {
		return fmt.Errorf("marshal parties: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contracts (id, title, contract_type, parties, uploaded_at, file_uri, status, overall_risk_score, compliance_status)
		 VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`,`+s.placeholder(6)+`,`+s.placeholder(7)+`,`+s.placeholder(8)+`,`+s.placeholder(9)+`)`,
		c.ID, c.Title, c.ContractType, partiesJSON, c.UploadedAt, c.FileURI, string(c.Status), c.OverallRiskScore, string(c.ComplianceStatus))
	if err != nil {
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (s *Store) scanContract(row *sql.Row) (*store.Contract, error) {
	var c store.Contract
	var partiesJSON, status, complianceStatus string
	err := row.Scan(&c.ID, &c.Title, &c.ContractType, &partiesJSON, &c.UploadedAt, &c.FileURI, &status, &c.OverallRiskScore, &complianceStatus)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan contract: %w", err)
	}
	c.Status = store.ContractStatus(status)
	c.ComplianceStatus = store.ComplianceStatus(complianceStatus)
	if err := unmarshalJSON(partiesJSON, &c.Parties); err != nil {
		return nil, fmt.Errorf("unmarshal parties: %w", err)
	}
	return &c, nil
}

func (s *Store) GetContract(ctx context.Context, id string) (*store.Contract, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, contract_type, parties, uploaded_at, file_uri, status, overall_risk_score, compliance_status FROM contracts WHERE id = `+s.placeholder(1),
		id)
	c, err := s.scanContract(row)
	if err == sql.ErrNoRows {
		return nil, &store.NotFoundError{Entity: "contract", ID: id}
	}
	return c, err
}

func (s *Store) UpdateContract(ctx context.Context, c *store.Contract) error {
	partiesJSON, err := marshalJSON(c.Parties)
	if err != nil {
		return fmt.Errorf("marshal parties: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE contracts SET title=`+s.placeholder(1)+`, contract_type=`+s.placeholder(2)+`, parties=`+s.placeholder(3)+`, status=`+s.placeholder(4)+`, overall_risk_score=`+s.placeholder(5)+`, compliance_status=`+s.placeholder(6)+` WHERE id=`+s.placeholder(7),
		c.Title, c.ContractType, partiesJSON, string(c.Status), c.OverallRiskScore, string(c.ComplianceStatus), c.ID)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}
	return nil
}

func (s *Store) SearchContracts(ctx context.Context, query string, limit int) ([]*store.Contract, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, contract_type, parties, uploaded_at, file_uri, status, overall_risk_score, compliance_status
		 FROM contracts WHERE title LIKE `+s.placeholder(1)+` ORDER BY uploaded_at DESC LIMIT `+fmt.Sprint(limit),
		like)
	if err != nil {
		return nil, fmt.Errorf("search contracts: %w", err)
	}
	defer rows.Close()

	var out []*store.Contract
	for rows.Next() {
		var c store.Contract
		var partiesJSON, status, complianceStatus string
		if err := rows.Scan(&c.ID, &c.Title, &c.ContractType, &partiesJSON, &c.UploadedAt, &c.FileURI, &status, &c.OverallRiskScore, &complianceStatus); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		c.Status = store.ContractStatus(status)
		c.ComplianceStatus = store.ComplianceStatus(complianceStatus)
		if err := unmarshalJSON(partiesJSON, &c.Parties); err != nil {
			return nil, fmt.Errorf("unmarshal parties: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
