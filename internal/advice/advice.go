// Package advice maps classified analysis state to ordered recommendations.
package advice

import "slices"

// MaxRecommendations caps every recommendation list.
const MaxRecommendations = 5

// State is the classified outcome of one domain analysis.
type State struct {
	Domain  string          `json:"domain"`
	Score   int             `json:"score"`
	Label   string          `json:"label"`
	SubType string          `json:"sub_type"`
	Flags   map[string]bool `json:"flags"`
}

// Range is an inclusive score range. A nil *Range matches any score.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r *Range) contains(v int) bool {
	if r == nil {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// Rule emits Advice when every non-empty condition holds. Domain, Labels and
// SubTypes match any listed value; Flags must all be set.
type Rule struct {
	Domain   string   `yaml:"domain"`
	Scores   *Range   `yaml:"scores"`
	Labels   []string `yaml:"labels"`
	SubTypes []string `yaml:"sub_types"`
	Flags    []string `yaml:"flags"`
	Advice   []string `yaml:"advice"`
}

// Matches reports whether the rule applies to s.
func (r Rule) Matches(s State) bool {
	if r.Domain != "" && r.Domain != s.Domain {
		return false
	}
	if !r.Scores.contains(s.Score) {
		return false
	}
	if len(r.Labels) > 0 && !slices.Contains(r.Labels, s.Label) {
		return false
	}
	if len(r.SubTypes) > 0 && !slices.Contains(r.SubTypes, s.SubType) {
		return false
	}
	for _, f := range r.Flags {
		if !s.Flags[f] {
			return false
		}
	}
	return true
}

// Engine evaluates a rule table in order.
type Engine struct {
	rules []Rule
	max   int
}

// New returns an engine over rules, or DefaultRules when rules is nil.
func New(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, max: MaxRecommendations}
}

// Recommend returns the advice for one state.
func (e *Engine) Recommend(s State) []string {
	return e.RecommendAll([]State{s})
}

// RecommendAll evaluates the table for each state in turn and returns the
// deduplicated advice, at most MaxRecommendations entries. The result is
// never nil.
func (e *Engine) RecommendAll(states []State) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range states {
		for _, r := range e.rules {
			if !r.Matches(s) {
				continue
			}
			for _, a := range r.Advice {
				if a == "" || seen[a] {
					continue
				}
				seen[a] = true
				out = append(out, a)
				if len(out) == e.max {
					return out
				}
			}
		}
	}
	return out
}

// Rules returns a copy of the engine's table.
func (e *Engine) Rules() []Rule {
	return slices.Clone(e.rules)
}
