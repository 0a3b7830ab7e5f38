package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lexframe/lexframe/store"
)

func (s *Store) CreateSession(ctx context.Context, sess *store.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at, title, active_contract_id, message_count)
		 VALUES (`+s.placeholder(1)+`,`+s.placeholder(2)+`,`+s.placeholder(3)+`,`+s.placeholder(4)+`,`+s.placeholder(5)+`,`+s.placeholder(6)+`)`,
		sess.ID, sess.CreatedAt, sess.UpdatedAt, sess.Title, sess.ActiveContractID, sess.MessageCount)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*store.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, title, active_contract_id, message_count FROM sessions WHERE id = `+s.placeholder(1),
		id)
	var sess store.Session
	err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt, &sess.Title, &sess.ActiveContractID, &sess.MessageCount)
	if err == sql.ErrNoRows {
		return nil, &store.NotFoundError{Entity: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess *store.Session) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = `+s.placeholder(1)+`, title = `+s.placeholder(2)+`, active_contract_id = `+s.placeholder(3)+`, message_count = `+s.placeholder(4)+` WHERE id = `+s.placeholder(5),
		sess.UpdatedAt, sess.Title, sess.ActiveContractID, sess.MessageCount, sess.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
