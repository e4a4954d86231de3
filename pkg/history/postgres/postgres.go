// Package postgres provides a PostgreSQL implementation of history.Store.
// It uses pgx/v5 for connection pooling and a plain messages table ordered
// by insertion.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glmware/glmbridge/pkg/chat"
	"github.com/glmware/glmbridge/pkg/history"
)

// Store is a PostgreSQL-backed history.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Append adds messages to a session's transcript inside one transaction so
// a multi-message append is all-or-nothing.
func (s *Store) Append(ctx context.Context, sessionID string, messages ...chat.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range messages {
		_, err := tx.Exec(ctx, `
			INSERT INTO session_messages (session_id, msg_type, role, name, content)
			VALUES ($1, $2, $3, $4, $5)
		`, sessionID, string(m.Type), m.Role, m.Name, m.Content)
		if err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Messages returns a session's transcript in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT msg_type, role, name, content
		FROM session_messages
		WHERE session_id = $1
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var msgType string
		var m chat.Message
		if err := rows.Scan(&msgType, &m.Role, &m.Name, &m.Content); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Type = chat.MessageType(msgType)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading messages: %w", err)
	}

	if len(messages) == 0 {
		return nil, history.ErrNotFound
	}
	return messages, nil
}

// Clear removes a session's transcript.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM session_messages WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
