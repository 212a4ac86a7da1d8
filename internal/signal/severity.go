package signal

import (
	"encoding/json"
	"fmt"
	"math"
)

// Severity is a four-level ordinal label. Higher values are more severe.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalJSON encodes the label rather than the rank.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the label form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// SeverityThresholds are strict lower bounds on frequency × |impactWeight|.
type SeverityThresholds struct {
	Critical float64 `json:"critical" mapstructure:"critical"`
	High     float64 `json:"high" mapstructure:"high"`
	Medium   float64 `json:"medium" mapstructure:"medium"`
}

// DefaultSeverityThresholds returns the 80/50/25 table.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{Critical: 80, High: 50, Medium: 25}
}

// Score returns frequency × |impactWeight|.
func Score(frequency int, impactWeight float64) float64 {
	return float64(frequency) * math.Abs(impactWeight)
}

// Rank labels a severity score.
func (t SeverityThresholds) Rank(score float64) Severity {
	switch {
	case score > t.Critical:
		return SeverityCritical
	case score > t.High:
		return SeverityHigh
	case score > t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Classify labels a keyword by its frequency and impact weight.
func (t SeverityThresholds) Classify(frequency int, impactWeight float64) Severity {
	return t.Rank(Score(frequency, impactWeight))
}

// Validate checks that the thresholds are ordered, which keeps Rank monotonic.
func (t SeverityThresholds) Validate() error {
	if !(t.Critical >= t.High && t.High >= t.Medium && t.Medium >= 0) {
		return fmt.Errorf("severity thresholds must satisfy critical >= high >= medium >= 0, got %v/%v/%v",
			t.Critical, t.High, t.Medium)
	}
	return nil
}
