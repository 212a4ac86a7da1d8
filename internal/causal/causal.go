// Package causal ranks detected frequency changes as candidate explanations
// for a free-text question.
package causal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
	perrors "github.com/lazypower/pulse/internal/errors"
	"github.com/lazypower/pulse/internal/lexicon"
	"github.com/lazypower/pulse/internal/signal"
)

const (
	// DefaultTimeframeDays is used when a caller passes 0.
	DefaultTimeframeDays = 30
	// MaxHypotheses caps the ranked output.
	MaxHypotheses = 3
	// MaxEvidence caps evidence snippets per hypothesis.
	MaxEvidence = 3
	// MaxTimeline caps timeline dates per hypothesis.
	MaxTimeline = 5
	// SnippetLength is the evidence truncation length in characters.
	SnippetLength = 100

	baseRelevance  = 0.5
	matchBonus     = 0.3
	maxChangeBonus = 0.2
	minRelevance   = 0.6
	maxConfidence  = 0.95
	timelineLayout = "2006-01-02"
	noCauseSummary = "No clear cause identified"
)

// Hypothesis is one ranked explanation.
type Hypothesis struct {
	Topic       string   `json:"topic"`
	Description string   `json:"cause_description"`
	ChangeRatio float64  `json:"change_ratio"`
	Relevance   float64  `json:"relevance"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
	Timeline    []string `json:"timeline"`
}

// Ranker scores changes against the keywords a question implies.
type Ranker struct {
	// Domains maps question cue words to the keywords they imply.
	Domains map[string][]string
	// Location formats timeline dates. Nil means UTC.
	Location *time.Location
}

// NewRanker returns a ranker over domains, or DefaultDomains when nil.
func NewRanker(domains map[string][]string, loc *time.Location) *Ranker {
	if domains == nil {
		domains = DefaultDomains()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ranker{Domains: domains, Location: loc}
}

// Validate checks a cause question and returns the effective timeframe.
func Validate(question string, timeframeDays int) (int, error) {
	if strings.TrimSpace(question) == "" {
		return 0, perrors.NewValidation("question", "question must not be empty")
	}
	if timeframeDays < 0 {
		return 0, perrors.NewValidation("timeframe_days", fmt.Sprintf("must not be negative, got %d", timeframeDays))
	}
	if timeframeDays == 0 {
		timeframeDays = DefaultTimeframeDays
	}
	return timeframeDays, nil
}

// Implied returns the folded keywords the question points at.
func (r *Ranker) Implied(question string) map[string]bool {
	q := lexicon.Normalize(question)
	out := make(map[string]bool)
	for cue, keywords := range r.Domains {
		if cue = lexicon.Normalize(cue); cue == "" || !strings.Contains(q, cue) {
			continue
		}
		for _, k := range keywords {
			if k = lexicon.Normalize(k); k != "" {
				out[k] = true
			}
		}
	}
	return out
}

// Matches reports whether topic is implied by the question, either through
// a domain keyword or by appearing in the question itself.
func (r *Ranker) Matches(question, topic string) bool {
	topic = lexicon.Normalize(topic)
	if topic == "" {
		return false
	}
	if strings.Contains(lexicon.Normalize(question), topic) {
		return true
	}
	return r.Implied(question)[topic]
}

// Relevance scores a change: a base, a bonus when the question implies the
// topic and up to 0.2 for the size of the change.
func Relevance(matched bool, changeRatio float64) float64 {
	rel := baseRelevance
	if matched {
		rel += matchBonus
	}
	return rel + math.Min(maxChangeBonus, math.Abs(changeRatio)/10)
}

// Rank turns changes into at most MaxHypotheses hypotheses. recent supplies
// evidence and timeline dates and should be ordered newest first.
func (r *Ranker) Rank(question string, changes []signal.ChangeRecord, recent []corpus.Message) []Hypothesis {
	implied := r.Implied(question)
	q := lexicon.Normalize(question)

	var out []Hypothesis
	for _, c := range changes {
		topic := lexicon.Normalize(c.Topic)
		matched := implied[topic] || (topic != "" && strings.Contains(q, topic))
		rel := Relevance(matched, c.ChangeRatio)
		if rel <= minRelevance {
			continue
		}
		out = append(out, Hypothesis{
			Topic:       topic,
			Description: describe(c),
			ChangeRatio: c.ChangeRatio,
			Relevance:   rel,
			Confidence:  math.Min(maxConfidence, rel),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		ai, aj := math.Abs(out[i].ChangeRatio), math.Abs(out[j].ChangeRatio)
		if ai != aj {
			return ai > aj
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > MaxHypotheses {
		out = out[:MaxHypotheses]
	}

	for i := range out {
		out[i].Evidence, out[i].Timeline = r.evidence(out[i].Topic, recent)
	}
	return out
}

func (r *Ranker) evidence(topic string, recent []corpus.Message) ([]string, []string) {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	evidence := []string{}
	timeline := []string{}
	seen := make(map[string]bool)
	for _, m := range lexicon.Matching(recent, topic) {
		if len(evidence) < MaxEvidence {
			evidence = append(evidence, lexicon.Snippet(m.Content, SnippetLength))
		}
		day := m.Timestamp.In(loc).Format(timelineLayout)
		if !seen[day] && len(timeline) < MaxTimeline {
			seen[day] = true
			timeline = append(timeline, day)
		}
		if len(evidence) == MaxEvidence && len(timeline) == MaxTimeline {
			break
		}
	}
	return evidence, timeline
}

func describe(c signal.ChangeRecord) string {
	dir := "decreased"
	if c.Increased() {
		dir = "increased"
	}
	return fmt.Sprintf("%s frequency %s", lexicon.Normalize(c.Topic), dir)
}

// Summarize names the top hypothesis and its confidence.
func Summarize(hyps []Hypothesis) string {
	if len(hyps) == 0 {
		return noCauseSummary
	}
	top := hyps[0]
	s := fmt.Sprintf("Most likely cause: %s (%d%% confidence)", top.Description, int(math.Round(top.Confidence*100)))
	if len(hyps) > 1 {
		others := make([]string, 0, len(hyps)-1)
		for _, h := range hyps[1:] {
			others = append(others, h.Topic)
		}
		s += fmt.Sprintf(". Also changed: %s", strings.Join(others, ", "))
	}
	return s
}
