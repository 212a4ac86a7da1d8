package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// SQLStore keeps entries in an analysis_cache table. Timestamps are stored
// as unix milliseconds so the same statements work on SQLite and MySQL.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
	owned  bool
}

// NewSQLStore uses an existing connection whose schema already has the
// analysis_cache table.
func NewSQLStore(db *sql.DB, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, logger: logger}
}

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
    id           BIGINT AUTO_INCREMENT PRIMARY KEY,
    query_type   VARCHAR(64) NOT NULL,
    query_params VARCHAR(512) NOT NULL DEFAULT '',
    result       MEDIUMTEXT NOT NULL,
    created_at   BIGINT NOT NULL,
    expires_at   BIGINT NOT NULL,
    INDEX idx_cache_lookup (query_type, query_params, created_at),
    INDEX idx_cache_expires (expires_at)
)`

// OpenMySQL connects to MySQL, verifies the connection and creates the
// table if needed.
func OpenMySQL(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create analysis_cache: %w", err)
	}
	s := NewSQLStore(db, logger)
	s.owned = true
	return s, nil
}

// Latest implements Store.
func (s *SQLStore) Latest(ctx context.Context, queryType, params string, now time.Time) (*Entry, error) {
	var (
		e                  Entry
		result             string
		created, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT query_type, query_params, result, created_at, expires_at
		FROM analysis_cache
		WHERE query_type = ? AND query_params = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, queryType, params, now.UnixMilli()).Scan(&e.QueryType, &e.QueryParams, &result, &created, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis_cache: %w", err)
	}
	e.Result = []byte(result)
	e.CreatedAt = time.UnixMilli(created)
	e.ExpiresAt = time.UnixMilli(expiresAt)
	return &e, nil
}

// Insert implements Store.
func (s *SQLStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (query_type, query_params, result, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.QueryType, e.QueryParams, string(e.Result), e.CreatedAt.UnixMilli(), e.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert analysis_cache: %w", err)
	}
	return nil
}

// Cleanup implements Store.
func (s *SQLStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("clean analysis_cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
		return 0, nil
	}
	return n, nil
}

// Close releases the connection if the store opened it.
func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
