// Package cache memoizes expensive analysis results with a time-to-live.
//
// Entries are append-only: Put never overwrites, and Get returns the most
// recently created entry that has not expired. Expired rows stay in the
// store until Cleanup removes them.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is used when Put is called with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Entry is one cached result.
type Entry struct {
	QueryType   string          `json:"query_type"`
	QueryParams string          `json:"query_params"`
	Result      json.RawMessage `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Live reports whether the entry may be served at now.
func (e Entry) Live(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store persists entries.
type Store interface {
	// Latest returns the newest entry for the key that is live at now,
	// or nil when there is none.
	Latest(ctx context.Context, queryType, params string, now time.Time) (*Entry, error)
	Insert(ctx context.Context, e Entry) error
	// Cleanup deletes entries that expired at or before now.
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

// ProfileCache is a TTL cache keyed by query type and parameters.
type ProfileCache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// New returns a cache over store. A non-positive ttl selects DefaultTTL.
func New(store Store, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileCache{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// SetClock replaces the time source.
func (c *ProfileCache) SetClock(now func() time.Time) {
	c.now = now
}

// TTL returns the default time-to-live.
func (c *ProfileCache) TTL() time.Duration {
	return c.ttl
}

// Params returns the canonical key form of params: its JSON encoding, with
// map keys sorted, or "" for nil.
func Params(params any) (string, error) {
	if params == nil {
		return "", nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache params: %w", err)
	}
	if s := string(data); s != "null" && s != "{}" {
		return s, nil
	}
	return "", nil
}

// Get returns the most recent live entry for the key. A miss is not an error.
func (c *ProfileCache) Get(ctx context.Context, queryType string, params any) (*Entry, bool, error) {
	key, err := Params(params)
	if err != nil {
		return nil, false, err
	}
	e, err := c.store.Latest(ctx, queryType, key, c.now())
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", queryType, err)
	}
	if e == nil {
		c.logger.Debug("Cache miss", zap.String("query_type", queryType))
		return nil, false, nil
	}
	c.logger.Debug("Cache hit", zap.String("query_type", queryType), zap.Time("expires_at", e.ExpiresAt))
	return e, true, nil
}

// Load decodes the most recent live entry into dst and reports whether one was found.
func (c *ProfileCache) Load(ctx context.Context, queryType string, params, dst any) (bool, error) {
	e, ok, err := c.Get(ctx, queryType, params)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(e.Result, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", queryType, err)
	}
	return true, nil
}

// Put stores result as a new entry expiring ttl from now. Older entries are
// left in place. A non-positive ttl selects the cache default.
func (c *ProfileCache) Put(ctx context.Context, queryType string, params, result any, ttl time.Duration) (*Entry, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	key, err := Params(params)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode cached %s: %w", queryType, err)
	}
	now := c.now()
	e := Entry{
		QueryType:   queryType,
		QueryParams: key,
		Result:      data,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := c.store.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("cache put %s: %w", queryType, err)
	}
	return &e, nil
}

// Cleanup removes expired entries from the store.
func (c *ProfileCache) Cleanup(ctx context.Context) (int64, error) {
	n, err := c.store.Cleanup(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", n))
	return n, nil
}
