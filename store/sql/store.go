// Package sql implements store.Store on top of database/sql, selectable
// between SQLite (mattn/go-sqlite3, the dev/test backend) and Postgres
// (lib/pq, the production backend) via Config.Driver. The provider-from-
// config construction pattern (SetDefaults/Validate, NewXFromConfig) is
// adapted from the teacher's databases/qdrant.go, generalized from a
// vector database client to a relational one.
package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lexframe/lexframe/store"
)

// Config selects and configures the SQL backend.
type Config struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" && c.Driver == "sqlite" {
		c.DSN = "file:legalmind.db?cache=shared&_fk=1"
	}
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("store DSN is required")
	}
	return nil
}

// Store is the database/sql-backed store.Store implementation.
type Store struct {
	db     *sql.DB
	driver string
}

// NewFromConfig opens the configured backend and ensures its schema
// exists.
func NewFromConfig(cfg *Config) (*Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	driverName := "sqlite3"
	if cfg.Driver == "postgres" {
		driverName = "postgres"
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// placeholder returns the positional-parameter placeholder for the
// configured driver ($1 for postgres, ? for sqlite).
func (s *Store) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			title TEXT,
			active_contract_id TEXT,
			message_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			agent_name TEXT,
			citations TEXT,
			tool_calls_summary TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			contract_type TEXT,
			parties TEXT,
			uploaded_at TIMESTAMP NOT NULL,
			file_uri TEXT NOT NULL,
			status TEXT NOT NULL,
			overall_risk_score REAL,
			compliance_status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clauses (
			id TEXT PRIMARY KEY,
			contract_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			type TEXT NOT NULL,
			text TEXT NOT NULL,
			risk_score REAL,
			notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS thinking_logs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			turn_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			agent_name TEXT NOT NULL,
			stage TEXT NOT NULL,
			payload TEXT,
			duration_ms INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generated_documents (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			file_uri TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS compliance_rules (
			regulation TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			text TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			PRIMARY KEY (regulation, rule_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalJSON[T any](s string, out *T) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
