// Package history keeps an operational log of chat exchanges and
// ingestion events. It is a server-side record; the per-session
// transcript remains the user-visible conversation.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docgpt-ai/docgpt/internal/db"
)

// IngestStatus classifies the outcome of one ingestion attempt.
type IngestStatus string

const (
	IngestAdded   IngestStatus = "added"
	IngestSkipped IngestStatus = "skipped"
	IngestFailed  IngestStatus = "failed"
)

// ChatMessage is one logged exchange half.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestEvent records one ingestion attempt.
type IngestEvent struct {
	ID        string       `json:"id"`
	FileName  string       `json:"file_name"`
	Status    IngestStatus `json:"status"`
	Detail    string       `json:"detail"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store provides logging and query operations over the history tables.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// LogMessage records one chat message for a session.
func (s *Store) LogMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, content)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// LogIngest records the outcome of one ingestion attempt.
func (s *Store) LogIngest(ctx context.Context, fileName string, status IngestStatus, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_events (id, file_name, status, detail)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), fileName, string(status), detail,
	)
	if err != nil {
		return fmt.Errorf("inserting ingest event: %w", err)
	}
	return nil
}

// RecentIngests returns the most recent ingestion events, newest first.
func (s *Store) RecentIngests(ctx context.Context, limit int) ([]IngestEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, status, detail, created_at
		FROM ingest_events
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest events: %w", err)
	}
	defer rows.Close()

	var events []IngestEvent
	for rows.Next() {
		var e IngestEvent
		var status string
		if err := rows.Scan(&e.ID, &e.FileName, &status, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ingest event: %w", err)
		}
		e.Status = IngestStatus(status)
		events = append(events, e)
	}
	return events, rows.Err()
}

// MessageCount returns the total number of logged chat messages.
func (s *Store) MessageCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chat messages: %w", err)
	}
	return count, nil
}

// SessionMessages returns the logged messages for one session in order.
func (s *Store) SessionMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
