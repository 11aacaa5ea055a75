package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists audit events to the audit_events table. Inserts are
// idempotent via ON CONFLICT DO NOTHING so a replayed event never duplicates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to Postgres and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the audit_events table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         UUID PRIMARY KEY,
			category   TEXT        NOT NULL,
			action     TEXT        NOT NULL,
			actor      TEXT        NOT NULL DEFAULT '',
			subject    TEXT        NOT NULL,
			outcome    TEXT        NOT NULL,
			reason     TEXT        NOT NULL DEFAULT '',
			client_ip  TEXT        NOT NULL DEFAULT '',
			request_id TEXT        NOT NULL DEFAULT '',
			timestamp  TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create audit_events table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, action, actor, subject,
			outcome, reason, client_ip, request_id, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		string(event.Action),
		event.Actor,
		event.Subject,
		event.Outcome,
		event.Reason,
		event.ClientIP,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, category, action, actor, subject,
			   outcome, reason, client_ip, request_id, timestamp
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			category string
			action   string
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&action,
			&event.Actor,
			&event.Subject,
			&event.Outcome,
			&event.Reason,
			&event.ClientIP,
			&event.RequestID,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = Category(category)
		event.Action = Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
