package causal

import (
	"strings"
	"testing"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
	perrors "github.com/lazypower/pulse/internal/errors"
	"github.com/lazypower/pulse/internal/signal"
)

var now = time.Date(2026, 4, 30, 18, 0, 0, 0, time.UTC)

func recentNightShifts(n int) []corpus.Message {
	out := make([]corpus.Message, n)
	for i := range out {
		out[i] = corpus.Message{
			ID:        int64(100 - i),
			Sender:    corpus.SenderUser,
			Content:   "Another night-shift this week, " + strings.Repeat("long ", 30),
			Timestamp: now.Add(-time.Duration(i) * 12 * time.Hour),
		}
	}
	return out
}

func TestValidate(t *testing.T) {
	if _, err := Validate("   ", 30); !perrors.IsValidation(err) {
		t.Errorf("empty question err = %v, want validation", err)
	} else if e := err.(*perrors.Error); e.Field != "question" {
		t.Errorf("Field = %q, want question", e.Field)
	}

	_, err := Validate("why?", -1)
	if !perrors.IsValidation(err) {
		t.Fatalf("negative days err = %v", err)
	}
	if e := err.(*perrors.Error); e.Field != "timeframe_days" {
		t.Errorf("Field = %q, want timeframe_days", e.Field)
	}

	days, err := Validate("why?", 0)
	if err != nil || days != DefaultTimeframeDays {
		t.Errorf("Validate(0) = %d, %v; want %d", days, err, DefaultTimeframeDays)
	}
	days, _ = Validate("why?", 7)
	if days != 7 {
		t.Errorf("Validate(7) = %d", days)
	}
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		matched bool
		ratio   float64
		want    float64
	}{
		{false, 0, 0.5},
		{false, -1, 0.6},
		{true, 0, 0.8},
		{true, 4, 1.0},
		{false, 50, 0.7},
	}
	for _, tt := range tests {
		got := Relevance(tt.matched, tt.ratio)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Relevance(%v, %v) = %v, want %v", tt.matched, tt.ratio, got, tt.want)
		}
	}
}

func TestRankTiredNightShift(t *testing.T) {
	r := NewRanker(nil, nil)
	changes := []signal.ChangeRecord{
		{Topic: "night-shift", RecentFrequency: 10, BaselineFrequency: 2, ChangeRatio: 4.0},
	}
	hyps := r.Rank("Why am I so tired lately?", changes, recentNightShifts(10))

	if len(hyps) != 1 {
		t.Fatalf("len = %d, want 1", len(hyps))
	}
	h := hyps[0]
	if h.Description != "night-shift frequency increased" {
		t.Errorf("Description = %q", h.Description)
	}
	if h.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", h.Confidence)
	}
	if len(h.Evidence) != MaxEvidence {
		t.Errorf("evidence = %d, want %d", len(h.Evidence), MaxEvidence)
	}
	for _, e := range h.Evidence {
		if len([]rune(e)) > SnippetLength {
			t.Errorf("snippet too long: %d", len([]rune(e)))
		}
	}
	// 10 messages twelve hours apart cover 5 or 6 dates; the timeline keeps 5.
	if len(h.Timeline) != MaxTimeline {
		t.Errorf("timeline = %v, want %d dates", h.Timeline, MaxTimeline)
	}
	if h.Timeline[0] != "2026-04-30" {
		t.Errorf("timeline[0] = %q", h.Timeline[0])
	}
	seen := map[string]bool{}
	for _, d := range h.Timeline {
		if seen[d] {
			t.Errorf("duplicate date %s", d)
		}
		seen[d] = true
	}

	summary := Summarize(hyps)
	if !strings.Contains(summary, "night-shift") || !strings.Contains(summary, "95%") {
		t.Errorf("summary = %q", summary)
	}
}

func TestRankFiltersAndOrders(t *testing.T) {
	r := NewRanker(nil, nil)
	changes := []signal.ChangeRecord{
		{Topic: "budget", ChangeRatio: 1.0},    // 0.6, not > 0.6
		{Topic: "commute", ChangeRatio: 5.0},   // 0.7
		{Topic: "deadline", ChangeRatio: -0.5}, // matched: 0.85
		{Topic: "boss", ChangeRatio: 3.0},      // matched: 1.0 -> 0.95
		{Topic: "workload", ChangeRatio: 4.0},  // matched: 1.0 -> 0.95
		{Topic: "vacation", ChangeRatio: 0.4},  // 0.54
	}
	hyps := r.Rank("Why is work so stressful?", changes, nil)

	if len(hyps) != MaxHypotheses {
		t.Fatalf("len = %d, want %d: %+v", len(hyps), MaxHypotheses, hyps)
	}
	want := []string{"workload", "boss", "deadline"}
	for i, w := range want {
		if hyps[i].Topic != w {
			t.Errorf("hyps[%d] = %s, want %s", i, hyps[i].Topic, w)
		}
	}
	if hyps[2].Description != "deadline frequency decreased" {
		t.Errorf("Description = %q", hyps[2].Description)
	}
	for _, h := range hyps {
		if h.Confidence > 0.95 || h.Confidence < 0 {
			t.Errorf("Confidence = %v out of range", h.Confidence)
		}
		if h.Evidence == nil || h.Timeline == nil {
			t.Error("evidence and timeline should be empty, not nil")
		}
	}
}

func TestTopicInQuestionMatches(t *testing.T) {
	r := NewRanker(map[string][]string{}, nil)
	if !r.Matches("Is the commute getting to me?", "commute") {
		t.Error("literal topic should match")
	}
	if r.Matches("Is the commute getting to me?", "deadline") {
		t.Error("unrelated topic matched")
	}
	hyps := r.Rank("Is the COMMUTE getting to me?", []signal.ChangeRecord{{Topic: "commute", ChangeRatio: 0.5}}, nil)
	if len(hyps) != 1 {
		t.Fatalf("len = %d, want 1", len(hyps))
	}
}

func TestNoCause(t *testing.T) {
	r := NewRanker(nil, nil)
	hyps := r.Rank("why?", nil, nil)
	if len(hyps) != 0 {
		t.Errorf("len = %d", len(hyps))
	}
	if got := Summarize(hyps); got != "No clear cause identified" {
		t.Errorf("Summarize = %q", got)
	}
}
