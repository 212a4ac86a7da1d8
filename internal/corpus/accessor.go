package corpus

import (
	"context"
	"time"

	perrors "github.com/lazypower/pulse/internal/errors"
	"go.uber.org/zap"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultPageSize = 500
)

// Cursor marks the last row of a page. The next page starts strictly after it
// in (timestamp desc, id desc) order.
type Cursor struct {
	Timestamp time.Time
	ID        int64
}

// PageQuery is one keyset-paginated read against the store.
type PageQuery struct {
	Window Window
	Sender Sender
	After  *Cursor
	Limit  int
}

// Source is the external store holding the corpus.
type Source interface {
	// FetchPage returns up to q.Limit messages in q.Window, newest first.
	FetchPage(ctx context.Context, q PageQuery) ([]Message, error)
}

// Accessor enforces validation, a bounded timeout and paging over a Source.
type Accessor struct {
	src      Source
	timeout  time.Duration
	pageSize int
	logger   *zap.Logger
}

// NewAccessor creates an Accessor. Zero timeout or page size selects the defaults.
func NewAccessor(src Source, timeout time.Duration, pageSize int, logger *zap.Logger) *Accessor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor{src: src, timeout: timeout, pageSize: pageSize, logger: logger}
}

// FetchWindow returns every message in [start, end) for sender, newest first.
// An empty result is not an error.
func (a *Accessor) FetchWindow(ctx context.Context, start, end time.Time, sender Sender) ([]Message, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if !sender.Valid() {
		return nil, perrors.NewValidation("sender", "must be user, assistant or empty")
	}
	w = w.Truncate()
	if !w.Start.Before(w.End) {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		out    []Message
		cursor *Cursor
		pages  int
	)
	for {
		page, err := a.src.FetchPage(ctx, PageQuery{Window: w, Sender: sender, After: cursor, Limit: a.pageSize})
		if err != nil {
			a.logger.Warn("corpus fetch failed",
				zap.Time("start", start),
				zap.Time("end", end),
				zap.Int("pages", pages),
				zap.Error(err))
			return nil, perrors.NewUnavailable("fetch messages", err)
		}
		pages++
		for _, m := range page {
			if w.Contains(m.Timestamp) {
				out = append(out, m)
			}
		}
		if len(page) < a.pageSize {
			break
		}
		last := page[len(page)-1]
		cursor = &Cursor{Timestamp: last.Timestamp, ID: last.ID}
	}

	a.logger.Debug("corpus window fetched",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.String("sender", string(sender)),
		zap.Int("messages", len(out)),
		zap.Int("pages", pages))
	return out, nil
}

// FetchLastDays is FetchWindow over the days before now.
func (a *Accessor) FetchLastDays(ctx context.Context, now time.Time, days int, sender Sender) ([]Message, Window, error) {
	w, err := LastDays(now, days)
	if err != nil {
		return nil, Window{}, err
	}
	msgs, err := a.FetchWindow(ctx, w.Start, w.End, sender)
	return msgs, w, err
}
