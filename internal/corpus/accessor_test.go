package corpus

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	perrors "github.com/lazypower/pulse/internal/errors"
)

// sliceSource serves messages from memory with the same ordering contract as the store.
type sliceSource struct {
	msgs  []Message
	calls int
}

func (s *sliceSource) FetchPage(ctx context.Context, q PageQuery) ([]Message, error) {
	s.calls++
	var rows []Message
	for _, m := range s.msgs {
		if !q.Window.Contains(m.Timestamp) {
			continue
		}
		if q.Sender != SenderAny && m.Sender != q.Sender {
			continue
		}
		if q.After != nil {
			if m.Timestamp.After(q.After.Timestamp) {
				continue
			}
			if m.Timestamp.Equal(q.After.Timestamp) && m.ID >= q.After.ID {
				continue
			}
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
		return rows[i].ID > rows[j].ID
	})
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

type failingSource struct{ err error }

func (f failingSource) FetchPage(ctx context.Context, q PageQuery) ([]Message, error) {
	return nil, f.err
}

type blockingSource struct{}

func (blockingSource) FetchPage(ctx context.Context, q PageQuery) ([]Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(n int) []Message {
	msgs := make([]Message, n)
	for i := range msgs {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderAssistant
		}
		msgs[i] = Message{
			ID:        int64(i + 1),
			SessionID: "s1",
			Sender:    sender,
			Content:   "message",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return msgs
}

func TestFetchWindowValidation(t *testing.T) {
	a := NewAccessor(&sliceSource{}, 0, 0, nil)

	_, err := a.FetchWindow(context.Background(), base, base, SenderAny)
	if !perrors.IsValidation(err) {
		t.Fatalf("start == end: err = %v, want validation error", err)
	}

	_, err = a.FetchWindow(context.Background(), base.Add(time.Hour), base, SenderAny)
	if !perrors.IsValidation(err) {
		t.Fatalf("start > end: err = %v, want validation error", err)
	}

	_, err = a.FetchWindow(context.Background(), base, base.Add(time.Hour), Sender("robot"))
	if !perrors.IsValidation(err) {
		t.Fatalf("bad sender: err = %v, want validation error", err)
	}
}

func TestFetchWindowValidationSkipsSource(t *testing.T) {
	src := &sliceSource{}
	a := NewAccessor(src, 0, 0, nil)
	a.FetchWindow(context.Background(), base, base, SenderAny)
	if src.calls != 0 {
		t.Errorf("source calls = %d, want 0", src.calls)
	}
}

func TestFetchWindowPagesAndOrders(t *testing.T) {
	src := &sliceSource{msgs: seed(25)}
	a := NewAccessor(src, time.Second, 4, nil)

	start := base.Add(2 * time.Hour)
	end := base.Add(20 * time.Hour)
	got, err := a.FetchWindow(context.Background(), start, end, SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(got) != 18 {
		t.Fatalf("len = %d, want 18", len(got))
	}
	if src.calls < 5 {
		t.Errorf("source calls = %d, want paging (>= 5)", src.calls)
	}
	for i, m := range got {
		if m.Timestamp.Before(start) || !m.Timestamp.Before(end) {
			t.Errorf("message %d at %v outside [%v, %v)", m.ID, m.Timestamp, start, end)
		}
		if i > 0 && m.Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("messages not in descending order at index %d", i)
		}
	}
}

func TestFetchWindowSenderFilter(t *testing.T) {
	a := NewAccessor(&sliceSource{msgs: seed(10)}, time.Second, 3, nil)

	got, err := a.FetchWindow(context.Background(), base, base.Add(24*time.Hour), SenderUser)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for _, m := range got {
		if m.Sender != SenderUser {
			t.Errorf("sender = %q, want user", m.Sender)
		}
	}
}

func TestFetchWindowEmpty(t *testing.T) {
	a := NewAccessor(&sliceSource{}, time.Second, 10, nil)
	got, err := a.FetchWindow(context.Background(), base, base.Add(time.Hour), SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestFetchWindowUnavailable(t *testing.T) {
	cause := errors.New("database is locked")
	a := NewAccessor(failingSource{err: cause}, time.Second, 10, nil)

	_, err := a.FetchWindow(context.Background(), base, base.Add(time.Hour), SenderAny)
	if !perrors.IsUnavailable(err) {
		t.Fatalf("err = %v, want DataSourceUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
}

func TestFetchWindowTimeout(t *testing.T) {
	a := NewAccessor(blockingSource{}, 20*time.Millisecond, 10, nil)

	_, err := a.FetchWindow(context.Background(), base, base.Add(time.Hour), SenderAny)
	if !perrors.IsUnavailable(err) {
		t.Fatalf("err = %v, want DataSourceUnavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded cause", err)
	}
}

func TestWindowHelpers(t *testing.T) {
	w, err := LastDays(base, 30)
	if err != nil {
		t.Fatalf("LastDays: %v", err)
	}
	if !w.End.Equal(base) || !w.Start.Equal(base.AddDate(0, 0, -30)) {
		t.Errorf("LastDays = %+v", w)
	}

	p := w.Preceding()
	if !p.End.Equal(w.Start) || p.Duration() != w.Duration() {
		t.Errorf("Preceding = %+v, want adjacent window of equal length", p)
	}

	if !w.Contains(w.Start) {
		t.Error("window must contain its start")
	}
	if w.Contains(w.End) {
		t.Error("window must not contain its end")
	}

	w, _ = LastDays(base.Add(123456789*time.Nanosecond), 1)
	if !w.End.Equal(base.Add(123*time.Millisecond)) {
		t.Errorf("LastDays end = %v, want truncated to the millisecond", w.End)
	}

	if _, err := LastDays(base, 0); !perrors.IsValidation(err) {
		t.Errorf("LastDays(0) err = %v, want validation error", err)
	}
}

func TestFetchWindowSubMillisecondSplit(t *testing.T) {
	src := &sliceSource{msgs: []Message{{
		ID:        1,
		Sender:    SenderUser,
		Content:   "message",
		Timestamp: base.Add(123 * time.Millisecond),
	}}}
	a := NewAccessor(src, 0, 10, nil)
	ctx := context.Background()
	split := base.Add(123500 * time.Microsecond)

	recent, err := a.FetchWindow(ctx, split, split.Add(time.Hour), SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow recent: %v", err)
	}
	baseline, err := a.FetchWindow(ctx, split.Add(-time.Hour), split, SenderAny)
	if err != nil {
		t.Fatalf("FetchWindow baseline: %v", err)
	}
	if len(recent)+len(baseline) != 1 || len(recent) != 1 {
		t.Errorf("recent = %d, baseline = %d, want the message in recent only", len(recent), len(baseline))
	}

	got, err := a.FetchWindow(ctx, split, split.Add(100*time.Microsecond), SenderAny)
	if err != nil || len(got) != 0 {
		t.Errorf("sub-millisecond window = %v, %v, want empty", got, err)
	}
}
