package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
)

var base = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, db *DB, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		sender := corpus.SenderUser
		if i%3 == 2 {
			sender = corpus.SenderAssistant
		}
		_, err := db.AddMessage(ctx, corpus.Message{
			SessionID: fmt.Sprintf("sess-%d", i%2),
			Sender:    sender,
			Content:   fmt.Sprintf("message %d", i),
			// Pairs share a timestamp to exercise the id tie-break.
			Timestamp: base.Add(time.Duration(i/2) * time.Hour),
		})
		if err != nil {
			t.Fatalf("AddMessage %d: %v", i, err)
		}
	}
}

func TestAddMessageValidation(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := db.AddMessage(ctx, corpus.Message{Sender: corpus.SenderUser, Content: "x"}); err == nil {
		t.Error("expected error for missing session_id")
	}
	if _, err := db.AddMessage(ctx, corpus.Message{SessionID: "s", Sender: "system", Content: "x"}); err == nil {
		t.Error("expected error for invalid sender")
	}
}

func TestAddMessageCountsSession(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	seed(t, db, 6)

	s, err := db.GetSession(context.Background(), "sess-0")
	if err != nil || s == nil {
		t.Fatalf("GetSession: %v, %v", s, err)
	}
	if s.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", s.MessageCount)
	}
}

func TestFetchPageOrderAndKeyset(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	seed(t, db, 10)
	ctx := context.Background()

	w := corpus.Window{Start: base, End: base.Add(24 * time.Hour)}
	var all []corpus.Message
	q := corpus.PageQuery{Window: w, Limit: 3}
	for {
		page, err := db.FetchPage(ctx, q)
		if err != nil {
			t.Fatalf("FetchPage: %v", err)
		}
		all = append(all, page...)
		if len(page) < q.Limit {
			break
		}
		last := page[len(page)-1]
		q.After = &corpus.Cursor{Timestamp: last.Timestamp, ID: last.ID}
	}

	if len(all) != 10 {
		t.Fatalf("got %d messages, want 10", len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if cur.Timestamp.After(prev.Timestamp) {
			t.Errorf("not ordered by time at %d", i)
		}
		if cur.Timestamp.Equal(prev.Timestamp) && cur.ID >= prev.ID {
			t.Errorf("tie not broken by id desc at %d", i)
		}
	}
}

func TestFetchPageWindowAndSender(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	seed(t, db, 10)
	ctx := context.Background()

	// Hours 1..3 hold messages 2..7.
	w := corpus.Window{Start: base.Add(time.Hour), End: base.Add(4 * time.Hour)}
	got, err := db.FetchPage(ctx, corpus.PageQuery{Window: w, Limit: 100})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("window: got %d, want 6", len(got))
	}
	for _, m := range got {
		if !w.Contains(m.Timestamp) {
			t.Errorf("message %d at %v outside window", m.ID, m.Timestamp)
		}
	}

	users, err := db.FetchPage(ctx, corpus.PageQuery{Window: w, Sender: corpus.SenderUser, Limit: 100})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	// Messages 2 and 5 are from the assistant.
	if len(users) != 4 {
		t.Errorf("user filter: got %d, want 4", len(users))
	}
}

func TestAccessorOverStore(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	seed(t, db, 20)

	acc := corpus.NewAccessor(db, time.Second, 4, nil)
	msgs, err := acc.FetchWindow(context.Background(), base, base.Add(100*time.Hour), corpus.SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(msgs) != 20 {
		t.Errorf("got %d, want 20", len(msgs))
	}
}

func TestAccessorWindowSplitWithinMillisecond(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if _, err := db.AddMessage(ctx, corpus.Message{
		SessionID: "sess-0",
		Sender:    corpus.SenderUser,
		Content:   "boundary",
		Timestamp: base.Add(123 * time.Millisecond),
	}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	acc := corpus.NewAccessor(db, time.Second, 10, nil)
	split := base.Add(123500 * time.Microsecond)
	recent, err := acc.FetchWindow(ctx, split, split.Add(time.Hour), corpus.SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow recent: %v", err)
	}
	baseline, err := acc.FetchWindow(ctx, split.Add(-time.Hour), split, corpus.SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow baseline: %v", err)
	}
	if len(recent) != 1 || len(baseline) != 0 {
		t.Errorf("recent = %d, baseline = %d, want 1 and 0", len(recent), len(baseline))
	}
}

func TestStats(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	empty, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if empty.Messages != 0 || empty.Oldest != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	seed(t, db, 4)
	s, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Sessions != 2 || s.Messages != 4 {
		t.Errorf("stats = %+v", s)
	}
	if s.Oldest == nil || !s.Oldest.Equal(base) {
		t.Errorf("Oldest = %v, want %v", s.Oldest, base)
	}
	if s.Newest == nil || !s.Newest.Equal(base.Add(time.Hour)) {
		t.Errorf("Newest = %v", s.Newest)
	}
}
