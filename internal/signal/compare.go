// Package signal compares keyword frequencies across windows and classifies
// the result into ordinal severity and trend labels.
package signal

import (
	"math"
	"sort"

	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/lexicon"
)

// DefaultSignificance is the minimum |changeRatio| for a change to be reported.
const DefaultSignificance = 0.3

// ChangeRecord describes how often a topic appeared in the recent window
// compared with the baseline window.
type ChangeRecord struct {
	Topic             string  `json:"topic"`
	RecentFrequency   int     `json:"recent_frequency"`
	BaselineFrequency int     `json:"baseline_frequency"`
	ChangeRatio       float64 `json:"change_ratio"`
}

// Increased reports whether the topic became more frequent.
func (c ChangeRecord) Increased() bool {
	return c.ChangeRatio > 0
}

// ChangeRatio is (recent-baseline)/baseline, or recent itself when the
// baseline is empty.
func ChangeRatio(recent, baseline int) float64 {
	if baseline == 0 {
		return float64(recent)
	}
	return float64(recent-baseline) / float64(baseline)
}

// Comparator detects significant baseline-vs-recent changes.
type Comparator struct {
	Threshold float64
}

// NewComparator returns a comparator; a non-positive threshold selects the default.
func NewComparator(threshold float64) Comparator {
	if threshold <= 0 {
		threshold = DefaultSignificance
	}
	return Comparator{Threshold: threshold}
}

// DetectChanges counts message presence for each topic in both sets and
// returns the topics whose |changeRatio| exceeds the threshold, largest first.
func (c Comparator) DetectChanges(recent, baseline []corpus.Message, topics []string) []ChangeRecord {
	recentCounts := lexicon.PresenceCounts(recent, topics)
	baselineCounts := lexicon.PresenceCounts(baseline, topics)

	var out []ChangeRecord
	seen := make(map[string]bool, len(topics))
	for _, topic := range topics {
		key := lexicon.Normalize(topic)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		r, b := recentCounts[key], baselineCounts[key]
		ratio := ChangeRatio(r, b)
		if math.Abs(ratio) <= c.Threshold {
			continue
		}
		out = append(out, ChangeRecord{
			Topic:             key,
			RecentFrequency:   r,
			BaselineFrequency: b,
			ChangeRatio:       ratio,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].ChangeRatio), math.Abs(out[j].ChangeRatio)
		if ai != aj {
			return ai > aj
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}
