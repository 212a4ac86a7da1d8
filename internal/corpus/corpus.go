// Package corpus provides read-only, time-bounded access to the message corpus.
package corpus

import (
	"time"

	perrors "github.com/lazypower/pulse/internal/errors"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	// SenderAny disables sender filtering.
	SenderAny Sender = ""
)

// Valid reports whether s is a known sender or SenderAny.
func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderAssistant, SenderAny:
		return true
	}
	return false
}

// Message is a single conversation turn. Owned by the capture pipeline; never mutated here.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Resolution is the timestamp precision messages are stored at.
const Resolution = time.Millisecond

// LastDays returns the window covering the days before now, with bounds at
// storage resolution.
func LastDays(now time.Time, days int) (Window, error) {
	if days <= 0 {
		return Window{}, perrors.NewValidation("timeframe_days", "must be positive")
	}
	now = now.Truncate(Resolution)
	return Window{Start: now.AddDate(0, 0, -days), End: now}, nil
}

// Truncate returns w with both bounds truncated to storage resolution, so
// in-memory checks agree with the store's millisecond bounds.
func (w Window) Truncate() Window {
	return Window{Start: w.Start.Truncate(Resolution), End: w.End.Truncate(Resolution)}
}

// Validate rejects empty or inverted windows.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return perrors.NewValidation("start", "must be before end")
	}
	return nil
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Preceding returns the equally long window immediately before w.
func (w Window) Preceding() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Filter returns the messages whose timestamps fall inside w, preserving order.
func (w Window) Filter(msgs []Message) []Message {
	var out []Message
	for _, m := range msgs {
		if w.Contains(m.Timestamp) {
			out = append(out, m)
		}
	}
	return out
}
