package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
)

// AddMessage appends a message to the corpus and bumps the session's
// message count, creating the session if needed.
func (db *DB) AddMessage(ctx context.Context, m corpus.Message) (int64, error) {
	if strings.TrimSpace(m.SessionID) == "" {
		return 0, fmt.Errorf("add message: session_id is required")
	}
	if m.Sender != corpus.SenderUser && m.Sender != corpus.SenderAssistant {
		return 0, fmt.Errorf("add message: invalid sender %q", m.Sender)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add message: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, started_at, status)
		VALUES (?, ?, 'active')
		ON CONFLICT(session_id) DO NOTHING
	`, m.SessionID, m.Timestamp.UnixMilli()); err != nil {
		return 0, fmt.Errorf("ensure session: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO messages (session_id, sender, content, created_at)
		VALUES (?, ?, ?, ?)
	`, m.SessionID, string(m.Sender), m.Content, m.Timestamp.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, _ := result.LastInsertId()

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET message_count = message_count + 1 WHERE session_id = ?
	`, m.SessionID); err != nil {
		return 0, fmt.Errorf("increment message count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add message: %w", err)
	}
	return id, nil
}

// FetchPage implements corpus.Source with keyset pagination over
// (created_at desc, id desc).
func (db *DB) FetchPage(ctx context.Context, q corpus.PageQuery) ([]corpus.Message, error) {
	var (
		where = []string{"created_at >= ?", "created_at < ?"}
		args  = []any{q.Window.Start.UnixMilli(), q.Window.End.UnixMilli()}
	)
	if q.Sender != corpus.SenderAny {
		where = append(where, "sender = ?")
		args = append(args, string(q.Sender))
	}
	if q.After != nil {
		ts := q.After.Timestamp.UnixMilli()
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, ts, ts, q.After.ID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = corpus.DefaultPageSize
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, sender, content, created_at
		FROM messages
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	defer rows.Close()

	var out []corpus.Message
	for rows.Next() {
		var (
			m       corpus.Message
			sender  string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &sender, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Sender = corpus.Sender(sender)
		m.Timestamp = time.UnixMilli(created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// CorpusStats summarizes the stored corpus.
type CorpusStats struct {
	Sessions int        `json:"sessions"`
	Messages int        `json:"messages"`
	Oldest   *time.Time `json:"oldest,omitempty"`
	Newest   *time.Time `json:"newest,omitempty"`
}

// Stats returns corpus totals.
func (db *DB) Stats(ctx context.Context) (*CorpusStats, error) {
	var (
		s              CorpusStats
		oldest, newest *int64
	)
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&s.Sessions); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM messages`,
	).Scan(&s.Messages, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if oldest != nil {
		t := time.UnixMilli(*oldest).UTC()
		s.Oldest = &t
	}
	if newest != nil {
		t := time.UnixMilli(*newest).UTC()
		s.Newest = &t
	}
	return &s, nil
}
