package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Session is one conversation whose messages feed the corpus.
type Session struct {
	ID           int64  `json:"id"`
	SessionID    string `json:"session_id"`
	Project      string `json:"project,omitempty"`
	StartedAt    int64  `json:"started_at"`
	EndedAt      *int64 `json:"ended_at,omitempty"`
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
}

const sessionColumns = `id, session_id, COALESCE(project, ''), started_at, ended_at, status, message_count`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	if err := row.Scan(&s.ID, &s.SessionID, &s.Project, &s.StartedAt, &s.EndedAt, &s.Status, &s.MessageCount); err != nil {
		return nil, err
	}
	return &s, nil
}

// InitSession creates a session, or returns the existing one. A completed
// session is reactivated.
func (db *DB) InitSession(ctx context.Context, sessionID, project string) (*Session, error) {
	now := time.Now().UnixMilli()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, project, started_at, status)
		VALUES (?, ?, ?, 'active')
		ON CONFLICT(session_id) DO UPDATE SET status = 'active', ended_at = NULL
	`, sessionID, project, now)
	if err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}

	s, err := db.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("init session: %s vanished", sessionID)
	}
	return s, nil
}

// GetSession returns a session by its session_id, or nil if unknown.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	s, err := scanSession(db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// CompleteSession marks an active session as completed.
func (db *DB) CompleteSession(ctx context.Context, sessionID string) error {
	now := time.Now().UnixMilli()
	result, err := db.ExecContext(ctx, `
		UPDATE sessions SET status = 'completed', ended_at = ?
		WHERE session_id = ? AND status = 'active'
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no active session found for %s", sessionID)
	}
	return nil
}

// EndSession completes a session if it is still active. Ending an already
// completed session is a no-op.
func (db *DB) EndSession(ctx context.Context, sessionID string) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		UPDATE sessions SET status = 'completed', ended_at = COALESCE(ended_at, ?)
		WHERE session_id = ? AND status = 'active'
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// GetRecentSessions returns the most recent sessions, newest first.
func (db *DB) GetRecentSessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
