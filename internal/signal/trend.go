package signal

import (
	"fmt"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/lexicon"
)

// Trend is the week-over-week direction of a signal.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

const week = 7 * 24 * time.Hour

// TrendThresholds are multipliers applied to last week's count.
type TrendThresholds struct {
	Increasing float64 `json:"increasing" mapstructure:"increasing"`
	Decreasing float64 `json:"decreasing" mapstructure:"decreasing"`
}

// DefaultTrendThresholds returns the 1.5/0.7 table.
func DefaultTrendThresholds() TrendThresholds {
	return TrendThresholds{Increasing: 1.5, Decreasing: 0.7}
}

// Classify compares this week's count against last week's.
// A zero last week with any activity this week is increasing.
func (t TrendThresholds) Classify(thisWeek, lastWeek int) Trend {
	switch {
	case float64(thisWeek) > float64(lastWeek)*t.Increasing:
		return TrendIncreasing
	case float64(thisWeek) < float64(lastWeek)*t.Decreasing:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Validate checks the multipliers bracket 1.
func (t TrendThresholds) Validate() error {
	if t.Increasing < 1 || t.Decreasing <= 0 || t.Decreasing > 1 {
		return fmt.Errorf("trend thresholds must satisfy increasing >= 1 and 0 < decreasing <= 1, got %v/%v",
			t.Increasing, t.Decreasing)
	}
	return nil
}

// WeekOverWeek counts messages containing keyword in the trailing week of
// [.., end) and in the week before it.
func WeekOverWeek(msgs []corpus.Message, keyword string, end time.Time) (thisWeek, lastWeek int) {
	thisW := corpus.Window{Start: end.Add(-week), End: end}
	lastW := corpus.Window{Start: end.Add(-2 * week), End: end.Add(-week)}
	for _, m := range lexicon.Matching(msgs, keyword) {
		switch {
		case thisW.Contains(m.Timestamp):
			thisWeek++
		case lastW.Contains(m.Timestamp):
			lastWeek++
		}
	}
	return thisWeek, lastWeek
}

// TrendOf classifies keyword's trend within msgs ending at end.
func (t TrendThresholds) TrendOf(msgs []corpus.Message, keyword string, end time.Time) Trend {
	return t.Classify(WeekOverWeek(msgs, keyword, end))
}
