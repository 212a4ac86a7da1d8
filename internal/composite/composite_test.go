package composite

import (
	"testing"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/lexicon"
)

// 2026-04-27 is a Monday.
var monday = time.Date(2026, 4, 27, 9, 0, 0, 0, time.UTC)

func messages(contents ...string) []corpus.Message {
	out := make([]corpus.Message, len(contents))
	for i, c := range contents {
		out[i] = corpus.Message{
			ID:        int64(i + 1),
			Sender:    corpus.SenderUser,
			Content:   c,
			Timestamp: monday.AddDate(0, 0, -i),
		}
	}
	return out
}

func fill(n int, content string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = content
	}
	return out
}

func TestFatigueOnlyTired(t *testing.T) {
	contents := append(fill(5, "so tired today"), fill(45, "had lunch")...)
	res := Fatigue().Analyze(messages(contents...), 30, Options{MinMessages: 100})

	if res.Score.Value != 10 {
		t.Errorf("Value = %d, want 10 (subscores %v)", res.Score.Value, res.Score.Subscores)
	}
	if res.GroupPercentages["physical"] != 100 || res.GroupPercentages["mental"] != 0 {
		t.Errorf("GroupPercentages = %v", res.GroupPercentages)
	}
	if res.SubType != "physical-dominant" {
		t.Errorf("SubType = %q, want physical-dominant", res.SubType)
	}
	if res.Score.Classification != "mild" {
		t.Errorf("Classification = %q, want mild", res.Score.Classification)
	}
	if res.Inputs.UniqueMessages != 5 || res.Inputs.Counts["tired"] != 5 {
		t.Errorf("Inputs = %+v", res.Inputs)
	}
	if !res.Flags["physical-symptoms"] || res.Flags["headaches"] {
		t.Errorf("Flags = %v", res.Flags)
	}
	if res.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", res.Confidence)
	}
}

func TestNoSymptoms(t *testing.T) {
	res := Fatigue().Analyze(messages(fill(20, "had lunch")...), 30, Options{MinMessages: 10})

	if res.Score.Value != 0 {
		t.Errorf("Value = %d, want 0", res.Score.Value)
	}
	if res.SubType != SubTypeNone {
		t.Errorf("SubType = %q, want none", res.SubType)
	}
	if res.PeakHour != nil {
		t.Errorf("PeakHour = %d, want nil", *res.PeakHour)
	}
	if res.DominantWeekday != "none" {
		t.Errorf("DominantWeekday = %q, want none", res.DominantWeekday)
	}
	if res.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", res.Confidence)
	}
	for name, c := range res.Inputs.Counts {
		if c != 0 {
			t.Errorf("count[%s] = %d, want 0", name, c)
		}
	}
}

func TestEmptyWindow(t *testing.T) {
	for domain, d := range Defaults() {
		res := d.Analyze(nil, 30, Options{MinMessages: 50})
		if res.Score.Value != 0 {
			t.Errorf("%s: Value = %d, want 0", domain, res.Score.Value)
		}
		if res.Score.Classification != LabelInsufficientData {
			t.Errorf("%s: Classification = %q", domain, res.Score.Classification)
		}
		if res.Confidence != 0 {
			t.Errorf("%s: Confidence = %v, want 0", domain, res.Confidence)
		}
		if res.LateNightShare != 0 {
			t.Errorf("%s: LateNightShare = %v", domain, res.LateNightShare)
		}
	}
}

func TestMixedSubType(t *testing.T) {
	contents := append(fill(3, "tired"), fill(3, "unmotivated")...)
	res := Fatigue().Analyze(messages(contents...), 30, Options{})
	if res.SubType != SubTypeMixed {
		t.Errorf("SubType = %q, want mixed (%v)", res.SubType, res.GroupPercentages)
	}
	if res.GroupPercentages["physical"] != 50 || res.GroupPercentages["mental"] != 50 {
		t.Errorf("GroupPercentages = %v", res.GroupPercentages)
	}
}

func TestReliefLowersEmotion(t *testing.T) {
	negative := fill(10, "feeling anxious")
	neutral := fill(10, "ordinary")
	positive := fill(10, "happy and grateful")

	base := Emotion().Analyze(messages(append(negative, neutral...)...), 30, Options{})
	offset := Emotion().Analyze(messages(append(negative, positive...)...), 30, Options{})
	if offset.Score.Value >= base.Score.Value {
		t.Errorf("relief did not lower the score: %d >= %d", offset.Score.Value, base.Score.Value)
	}
	if offset.Inputs.ReliefMessages != 10 {
		t.Errorf("ReliefMessages = %d, want 10", offset.Inputs.ReliefMessages)
	}
	if !offset.Flags["positive-moments"] {
		t.Error("positive-moments flag not set")
	}

	only := Emotion().Analyze(messages(positive...), 30, Options{})
	if only.Score.Value != 0 {
		t.Errorf("relief-only Value = %d, want 0", only.Score.Value)
	}
	if only.SubType != SubTypeNone {
		t.Errorf("relief-only SubType = %q, want none", only.SubType)
	}
}

func TestComputeBounds(t *testing.T) {
	for name, d := range Defaults() {
		for _, total := range []int{0, 1, 7, 100} {
			for _, unique := range []int{0, 1, 7, 100} {
				if unique > total {
					continue
				}
				counts := lexicon.Counts{}
				for _, c := range d.Categories {
					counts[c.Name] = unique * 3
				}
				for _, days := range []int{0, 1, 30} {
					s := d.Compute(Inputs{
						Counts:         counts,
						UniqueMessages: unique,
						ReliefMessages: unique,
						TotalMessages:  total,
						TimeframeDays:  days,
					})
					if s.Value < 0 || s.Value > 100 {
						t.Errorf("%s: Value = %d out of range", name, s.Value)
					}
					if s.Type != d.Type {
						t.Errorf("%s: Type = %q", name, s.Type)
					}
				}
			}
		}
	}
}

func TestComputeSaturates(t *testing.T) {
	d := Fatigue()
	counts := lexicon.Counts{}
	for _, c := range d.Categories {
		counts[c.Name] = 50
	}
	s := d.Compute(Inputs{Counts: counts, UniqueMessages: 50, TotalMessages: 50, TimeframeDays: 1})
	if s.Value != 100 {
		t.Errorf("Value = %d, want 100", s.Value)
	}
	if s.Classification != "severe" {
		t.Errorf("Classification = %q, want severe", s.Classification)
	}
}

func TestPeakHourAndWeekday(t *testing.T) {
	sunday := monday.AddDate(0, 0, -1)
	msgs := []corpus.Message{
		{ID: 1, Content: "tired", Timestamp: sunday.Add(5 * time.Hour)},
		{ID: 2, Content: "tired", Timestamp: monday.Add(5 * time.Hour)},
		{ID: 3, Content: "tired", Timestamp: monday.AddDate(0, 0, 1).Add(-2 * time.Hour)},
	}
	res := Fatigue().Analyze(msgs, 30, Options{})
	// One message each on Sunday, Monday and Tuesday; the week starts on Monday.
	if res.DominantWeekday != "Monday" {
		t.Errorf("DominantWeekday = %q, want Monday", res.DominantWeekday)
	}
	if res.PeakHour == nil || *res.PeakHour != 14 {
		t.Errorf("PeakHour = %v, want 14", res.PeakHour)
	}
}

func TestLocationShiftsFacets(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	msgs := []corpus.Message{
		{ID: 1, Content: "tired", Timestamp: monday.Add(-6 * time.Hour)}, // 03:00 UTC Monday
	}
	res := Fatigue().Analyze(msgs, 30, Options{Location: loc})
	if res.PeakHour == nil || *res.PeakHour != 17 {
		t.Errorf("PeakHour = %v, want 17", res.PeakHour)
	}
	if res.DominantWeekday != "Sunday" {
		t.Errorf("DominantWeekday = %q, want Sunday", res.DominantWeekday)
	}
}

func TestSleepLateNightFlag(t *testing.T) {
	night := time.Date(2026, 4, 20, 2, 30, 0, 0, time.UTC)
	var msgs []corpus.Message
	for i := 0; i < 10; i++ {
		ts := night.AddDate(0, 0, -i)
		if i >= 3 {
			ts = ts.Add(12 * time.Hour)
		}
		msgs = append(msgs, corpus.Message{ID: int64(i + 1), Content: "working again", Timestamp: ts})
	}
	res := Sleep().Analyze(msgs, 30, Options{})
	if res.LateNightShare != 0.3 {
		t.Errorf("LateNightShare = %v, want 0.3", res.LateNightShare)
	}
	if !res.Flags["late-night-activity"] {
		t.Error("late-night-activity not set")
	}
	if _, ok := Fatigue().Analyze(msgs, 30, Options{}).Flags["late-night-activity"]; ok {
		t.Error("fatigue should not derive late-night-activity")
	}
}

func TestWithCategories(t *testing.T) {
	d := Fatigue().WithCategories(map[string][]string{
		"tired":  {"knackered"},
		"achy":   {"sore", "aching"},
		"bleary": {"bleary"},
	})
	if len(d.Categories) != len(Fatigue().Categories)+2 {
		t.Fatalf("categories = %d", len(d.Categories))
	}
	if d.Categories[len(d.Categories)-2].Name != "achy" {
		t.Errorf("added categories not sorted: %+v", d.Categories[len(d.Categories)-2:])
	}
	res := d.Analyze(messages("knackered", "tired"), 30, Options{})
	if res.Inputs.Counts["tired"] != 1 {
		t.Errorf("tired count = %d, want 1", res.Inputs.Counts["tired"])
	}
	if Fatigue().Categories[0].Keywords[0] != "tired" {
		t.Error("WithCategories mutated the original")
	}
}

func TestWithLexiconDefaultsUnchanged(t *testing.T) {
	lexicons := lexicon.Defaults()
	for domain, d := range Defaults() {
		got := d.WithLexicon(lexicons.Get(domain))
		if len(got.Categories) != len(d.Categories) {
			t.Errorf("%s: categories = %d, want %d", domain, len(got.Categories), len(d.Categories))
			continue
		}
		for i, c := range got.Categories {
			if len(c.Keywords) != len(d.Categories[i].Keywords) {
				t.Errorf("%s/%s: keywords = %v, want %v", domain, c.Name, c.Keywords, d.Categories[i].Keywords)
			}
		}
	}
}

func TestWithLexiconOverrides(t *testing.T) {
	lex := lexicon.Defaults().Merge(map[string]map[string]float64{
		lexicon.DomainFatigue: {"tired": 0, "exhausted": 0, "knackered": 5},
	}).Get(lexicon.DomainFatigue)
	d := Fatigue().WithLexicon(lex)

	res := d.Analyze(messages("so tired", "exhausted again", "knackered", "drained"), 30, Options{})
	if res.Inputs.Counts["tired"] != 1 {
		t.Errorf("tired count = %d, want 1 (drained only)", res.Inputs.Counts["tired"])
	}
	if res.Inputs.Counts["exhausted"] != 0 {
		t.Errorf("exhausted count = %d, want 0", res.Inputs.Counts["exhausted"])
	}
	if res.Inputs.Counts["other"] != 1 {
		t.Errorf("other count = %d, want 1", res.Inputs.Counts["other"])
	}
	if res.Inputs.UniqueMessages != 2 {
		t.Errorf("UniqueMessages = %d, want 2", res.Inputs.UniqueMessages)
	}

	before := Fatigue().Analyze(messages("so tired", "exhausted again", "knackered", "drained"), 30, Options{})
	if before.Score.Value == res.Score.Value {
		t.Errorf("Value = %d with and without the override", res.Score.Value)
	}
}

func TestWithLexiconSigns(t *testing.T) {
	lex := lexicon.Defaults().Merge(map[string]map[string]float64{
		lexicon.DomainEmotion: {"happy": 3, "sunny": -4},
	}).Get(lexicon.DomainEmotion)
	d := Emotion().WithLexicon(lex)

	res := d.Analyze(messages("happy", "sunny"), 30, Options{})
	if res.Inputs.Counts["other"] != 1 || res.Inputs.Counts["joy"] != 1 {
		t.Errorf("Counts = %v, want happy under other and sunny under joy", res.Inputs.Counts)
	}
	if res.Inputs.ReliefMessages != 1 {
		t.Errorf("ReliefMessages = %d, want 1", res.Inputs.ReliefMessages)
	}
	if got := Fatigue().WithLexicon(lexicon.New("fatigue", nil)); len(got.Categories) != len(Fatigue().Categories) {
		t.Error("empty lexicon changed the descriptor")
	}
}

func TestComputeFatigueInputs(t *testing.T) {
	d := Fatigue()
	counts := lexicon.Counts{"tired": 5, "sluggish": 0, "exhausted": 0, "headache": 0, "sleepy": 0, "unmotivated": 0}
	s := d.Compute(Inputs{Counts: counts, UniqueMessages: 5, TotalMessages: 50, TimeframeDays: 30})
	if s.Value != 10 {
		t.Errorf("Value = %d, want 10", s.Value)
	}
	pct, sub := d.SubType(counts)
	if pct["physical"] != 100 || pct["mental"] != 0 || sub != "physical-dominant" {
		t.Errorf("SubType = %v, %q", pct, sub)
	}

	zero := lexicon.Counts{}
	s = d.Compute(Inputs{Counts: zero, TotalMessages: 50, TimeframeDays: 30})
	if _, sub := d.SubType(zero); s.Value != 0 || sub != SubTypeNone {
		t.Errorf("all-zero = %d, %q; want 0, none", s.Value, sub)
	}
}
