package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/advice"
	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/lexicon"
	"github.com/lazypower/pulse/internal/signal"
)

// Trigger list limits.
const (
	MaxTriggers  = 5
	MaxSamples   = 3
	SampleLength = 100
)

const (
	stressScale   = 10
	flagNight     = "night-shift"
	flagOvertime  = "overtime"
	flagCritical  = "critical-trigger"
	stressDomain  = lexicon.DomainStress
	labelNormal   = "normal"
	labelMild     = "mild"
	labelModerate = "moderate"
	labelHigh     = "high"
	labelSevere   = "severe"
)

// TriggerObservation is one stress keyword seen in the recent window.
type TriggerObservation struct {
	Keyword      string          `json:"keyword"`
	Frequency    int             `json:"frequency"`
	ImpactWeight float64         `json:"impact_weight"`
	Samples      []string        `json:"recent_occurrence_samples"`
	Trend        signal.Trend    `json:"trend"`
	Severity     signal.Severity `json:"severity"`
}

// StressReport is the result of a stress-trigger analysis.
type StressReport struct {
	RunID              string                `json:"run_id"`
	GeneratedAt        time.Time             `json:"generated_at"`
	TimeframeDays      int                   `json:"timeframe_days"`
	Window             corpus.Window         `json:"window"`
	TotalMessages      int                   `json:"total_messages"`
	OverallStressLevel int                   `json:"overall_stress_level"`
	Classification     string                `json:"classification"`
	TopTriggers        []TriggerObservation  `json:"top_triggers"`
	Changes            []signal.ChangeRecord `json:"changes"`
	Flags              map[string]bool       `json:"flags"`
	Recommendations    []string              `json:"recommendations"`
	Confidence         float64               `json:"confidence"`
}

// State returns the classified state the recommendation engine consumes.
func (r *StressReport) State() advice.State {
	return advice.State{
		Domain: stressDomain,
		Score:  r.OverallStressLevel,
		Label:  r.Classification,
		Flags:  r.Flags,
	}
}

// StressLabel maps an overall stress level to its classification.
func StressLabel(level int) string {
	switch {
	case level >= 80:
		return labelSevere
	case level >= 60:
		return labelHigh
	case level >= 40:
		return labelModerate
	case level >= 20:
		return labelMild
	default:
		return labelNormal
	}
}

// StressLevel is the weighted presence of every stress keyword per message,
// scaled and clamped to [0, 100]. Negative weights offset the total.
func StressLevel(counts lexicon.Counts, lex lexicon.Lexicon, total int) int {
	if total == 0 {
		return 0
	}
	var sum float64
	for _, kw := range lex.Keywords() {
		sum += float64(counts[kw]) * lex.Weight(kw)
	}
	v := math.Round(sum / float64(total) * stressScale)
	return int(math.Max(0, math.Min(100, v)))
}

// RunStressTriggerAnalysis scores the stress lexicon over the last days and
// reports the top triggers with their trend and severity. days == 0 uses the
// configured timeframe.
func (e *Engine) RunStressTriggerAnalysis(ctx context.Context, days int) (*StressReport, error) {
	days, err := e.resolveDays(days)
	if err != nil {
		return nil, err
	}
	r := e.newRun(stressDomain)

	window, err := corpus.LastDays(r.now, days)
	if err != nil {
		return nil, err
	}
	recent, err := e.fetch(ctx, window)
	if err != nil {
		return nil, err
	}
	baseline, err := e.fetch(ctx, window.Preceding())
	if err != nil {
		return nil, err
	}

	lex := e.lexicons.Stress()
	counts := lexicon.ScoreMessages(recent, lex, lexicon.Presence)

	report := &StressReport{
		RunID:              r.id,
		GeneratedAt:        r.now,
		TimeframeDays:      days,
		Window:             window,
		TotalMessages:      len(recent),
		OverallStressLevel: StressLevel(counts, lex, len(recent)),
		TopTriggers:        e.triggers(recent, counts, lex, window.End),
		Changes:            e.comparator.DetectChanges(recent, baseline, triggerKeywords(lex)),
		Confidence:         confidence(len(recent), e.minMessages),
	}
	if report.Changes == nil {
		report.Changes = []signal.ChangeRecord{}
	}
	report.Classification = StressLabel(report.OverallStressLevel)
	report.Flags = stressFlags(counts, report.TopTriggers)
	report.Recommendations = e.advice.Recommend(report.State())

	r.logger.Info("stress analysis complete",
		zap.Int("messages", report.TotalMessages),
		zap.Int("level", report.OverallStressLevel),
		zap.String("classification", report.Classification),
		zap.Int("triggers", len(report.TopTriggers)),
		zap.Int("changes", len(report.Changes)))
	return report, nil
}

// triggers builds the top observations for positive-weight keywords.
func (e *Engine) triggers(recent []corpus.Message, counts lexicon.Counts, lex lexicon.Lexicon, end time.Time) []TriggerObservation {
	out := []TriggerObservation{}
	for _, kw := range triggerKeywords(lex) {
		freq := counts[kw]
		if freq == 0 {
			continue
		}
		out = append(out, TriggerObservation{
			Keyword:      kw,
			Frequency:    freq,
			ImpactWeight: lex.Weight(kw),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		wi, wj := math.Abs(out[i].ImpactWeight), math.Abs(out[j].ImpactWeight)
		if wi != wj {
			return wi > wj
		}
		return out[i].Keyword < out[j].Keyword
	})
	if len(out) > MaxTriggers {
		out = out[:MaxTriggers]
	}

	for i := range out {
		t := &out[i]
		t.Samples = samples(recent, t.Keyword)
		t.Trend = e.trend.TrendOf(recent, t.Keyword, end)
		t.Severity = e.severity.Classify(t.Frequency, t.ImpactWeight)
	}
	return out
}

// triggerKeywords returns the lexicon's positive-weight keywords.
func triggerKeywords(lex lexicon.Lexicon) []string {
	var out []string
	for _, kw := range lex.Keywords() {
		if lex.Weight(kw) > 0 {
			out = append(out, kw)
		}
	}
	return out
}

func samples(msgs []corpus.Message, keyword string) []string {
	out := []string{}
	for _, m := range lexicon.Matching(msgs, keyword) {
		out = append(out, lexicon.Snippet(m.Content, SampleLength))
		if len(out) == MaxSamples {
			break
		}
	}
	return out
}

func stressFlags(counts lexicon.Counts, triggers []TriggerObservation) map[string]bool {
	flags := map[string]bool{
		flagNight:    counts.Total("night-shift", "night shift") > 0,
		flagOvertime: counts.Total("overtime") > 0,
		flagCritical: false,
	}
	for _, t := range triggers {
		if t.Severity == signal.SeverityCritical {
			flags[flagCritical] = true
		}
	}
	return flags
}

// confidence grows linearly with corpus size up to minMessages.
func confidence(total, minMessages int) float64 {
	if total == 0 {
		return 0
	}
	if minMessages <= 0 {
		return 1
	}
	return math.Min(1, float64(total)/float64(minMessages))
}
