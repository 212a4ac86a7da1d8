package advice

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	nightShiftAdvice = "Night shifts come up often. Protect one consistent sleep window after each shift."
	overtimeAdvice   = "Overtime keeps showing up. Try setting a hard stop time for work."
	lowDataAdvice    = "There are not enough messages yet for a reliable picture. Check back in a few days."
)

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{Labels: []string{"insufficient data"}, Advice: []string{lowDataAdvice}},

		{Domain: "stress", Labels: []string{"severe"}, Advice: []string{
			"Stress has been severe for a while. Consider talking to someone you trust or a professional.",
		}},
		{Domain: "stress", Labels: []string{"high", "severe"}, Advice: []string{
			"Your stress level is elevated. Schedule short breaks through the day.",
		}},
		{Domain: "stress", Flags: []string{"night-shift"}, Advice: []string{nightShiftAdvice}},
		{Domain: "stress", Flags: []string{"overtime"}, Advice: []string{overtimeAdvice}},
		{Domain: "stress", Flags: []string{"critical-trigger"}, Advice: []string{
			"One trigger dominates your week. Pick one small step to reduce it.",
		}},
		{Domain: "stress", Labels: []string{"mild", "moderate"}, Advice: []string{
			"Stress is manageable. Keep up whatever is helping you unwind.",
		}},

		{Domain: "fatigue", Scores: &Range{Min: 50, Max: 100}, Advice: []string{
			"Fatigue is high. Prioritize rest and lighten tomorrow's load where you can.",
		}},
		{Domain: "fatigue", SubTypes: []string{"physical-dominant"}, Advice: []string{
			"Fatigue looks mostly physical. Check hydration, meals and sleep regularity.",
		}},
		{Domain: "fatigue", SubTypes: []string{"mental-dominant"}, Advice: []string{
			"Fatigue looks mostly mental. Short breaks away from screens can help.",
		}},
		{Domain: "fatigue", Flags: []string{"headaches"}, Advice: []string{
			"Headaches are mentioned repeatedly. If they persist, consider seeing a doctor.",
		}},

		{Domain: "sleep", Flags: []string{"night-shift"}, Advice: []string{nightShiftAdvice}},
		{Domain: "sleep", Flags: []string{"late-night-activity"}, Advice: []string{
			"You are often active after midnight. Try winding down an hour earlier.",
		}},
		{Domain: "sleep", Flags: []string{"insomnia"}, Advice: []string{
			"Trouble sleeping comes up repeatedly. Keep a regular bedtime and limit caffeine after noon.",
		}},
		{Domain: "sleep", Scores: &Range{Min: 45, Max: 100}, Advice: []string{
			"Sleep looks disrupted. Aim for the same wake-up time every day, weekends included.",
		}},

		{Domain: "cognitive", Flags: []string{"brain-fog"}, Advice: []string{
			"Brain fog is mentioned. Short walks and regular meals may help clear it.",
		}},
		{Domain: "cognitive", Flags: []string{"overload"}, Advice: []string{
			"You sound overloaded. Write tasks down and pick the top three for today.",
		}},
		{Domain: "cognitive", Scores: &Range{Min: 45, Max: 100}, Advice: []string{
			"Focus is strained. Work in short blocks with notifications off.",
		}},

		{Domain: "emotion", Scores: &Range{Min: 70, Max: 100}, Advice: []string{
			"You seem to be going through a hard time. Consider talking to a professional.",
		}},
		{Domain: "emotion", SubTypes: []string{"anxious-dominant"}, Advice: []string{
			"Anxiety stands out. Slow breathing exercises can take the edge off.",
		}},
		{Domain: "emotion", SubTypes: []string{"low-mood-dominant"}, Advice: []string{
			"Your mood has been low. Reaching out to a friend can help.",
		}},
		{Domain: "emotion", SubTypes: []string{"irritable-dominant"}, Advice: []string{
			"Frustration is building up. Step away before replying when something annoys you.",
		}},

		{Domain: "work-stress", Flags: []string{"burnout"}, Advice: []string{
			"Burnout is mentioned. Raise your workload with your manager before it grows.",
		}},
		{Domain: "work-stress", Flags: []string{"overtime"}, Advice: []string{overtimeAdvice}},
		{Domain: "work-stress", Flags: []string{"night-shift"}, Advice: []string{nightShiftAdvice}},
		{Domain: "work-stress", SubTypes: []string{"interpersonal-dominant"}, Advice: []string{
			"Work tension seems to come from people more than tasks. A direct, calm conversation may help.",
		}},
		{Domain: "work-stress", Scores: &Range{Min: 50, Max: 100}, Advice: []string{
			"Work pressure is high. Block out focus time and decline meetings you don't need.",
		}},
	}
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule table.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule table. Every rule needs at least one advice string.
func ParseRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	for i, r := range f.Rules {
		if len(r.Advice) == 0 {
			return nil, fmt.Errorf("rules file: rule %d has no advice", i)
		}
		if r.Scores != nil && r.Scores.Min > r.Scores.Max {
			return nil, fmt.Errorf("rules file: rule %d has min %d > max %d", i, r.Scores.Min, r.Scores.Max)
		}
	}
	return f.Rules, nil
}
