package composite

import (
	"sort"

	"github.com/lazypower/pulse/internal/lexicon"
)

// DefaultDominance is the group share, in percent, above which a sub-type
// is reported as dominant.
const DefaultDominance = 70

// Fatigue scores tiredness and low energy.
func Fatigue() Descriptor {
	return Descriptor{
		Type: lexicon.DomainFatigue,
		Categories: []Category{
			{Name: "tired", Keywords: []string{"tired", "fatigued", "worn out", "drained"}},
			{Name: "sluggish", Keywords: []string{"sluggish", "lethargic", "no energy"}},
			{Name: "exhausted", Keywords: []string{"exhausted", "wiped out", "running on empty"}, Severe: true},
			{Name: "headache", Keywords: []string{"headache", "migraine"}, Severe: true},
			{Name: "sleepy", Keywords: []string{"sleepy", "drowsy", "can't keep my eyes open"}},
			{Name: "unmotivated", Keywords: []string{"unmotivated", "no motivation", "can't be bothered"}, Severe: true},
		},
		Groups: []Group{
			{Name: "physical", Categories: []string{"tired", "sluggish", "exhausted", "headache", "sleepy"}},
			{Name: "mental", Categories: []string{"unmotivated", "exhausted"}},
		},
		Flags: []Flag{
			{Name: "physical-symptoms", Categories: []string{"tired", "sluggish", "exhausted", "headache", "sleepy"}},
			{Name: "headaches", Categories: []string{"headache"}},
		},
		Formula: Formula{
			PrevalenceCap:   40,
			PrevalenceScale: 60,
			FrequencyCap:    30,
			FrequencyScale:  10,
			BreadthWeight:   15,
			IntensityCap:    15,
			IntensityDiv:    10,
		},
		Bands: []Band{
			{Min: 70, Label: "severe"},
			{Min: 50, Label: "high"},
			{Min: 30, Label: "moderate"},
			{Min: 10, Label: "mild"},
			{Min: 0, Label: "low"},
		},
		DominanceThreshold: DefaultDominance,
	}
}

// Sleep scores sleep disruption.
func Sleep() Descriptor {
	return Descriptor{
		Type: lexicon.DomainSleep,
		Categories: []Category{
			{Name: "insomnia", Keywords: []string{"insomnia", "can't sleep", "cannot sleep", "couldn't sleep", "trouble sleeping"}, Severe: true},
			{Name: "late-night", Keywords: []string{"up all night", "all-nighter", "stayed up", "2am", "3am", "4am"}, Severe: true},
			{Name: "poor-quality", Keywords: []string{"restless", "woke up", "nightmare", "tossing"}},
			{Name: "daytime-sleepiness", Keywords: []string{"sleepy", "drowsy", "nodding off", "nap"}},
			{Name: "oversleeping", Keywords: []string{"overslept", "slept in", "slept all day"}},
			{Name: "night-shift", Keywords: []string{"night shift", "night-shift", "graveyard shift"}},
		},
		Groups: []Group{
			{Name: "insufficient", Categories: []string{"insomnia", "late-night", "poor-quality", "daytime-sleepiness", "night-shift"}},
			{Name: "excessive", Categories: []string{"oversleeping"}},
		},
		Flags: []Flag{
			{Name: "night-shift", Categories: []string{"night-shift"}},
			{Name: "insomnia", Categories: []string{"insomnia"}},
		},
		Formula: Formula{
			PrevalenceCap:   40,
			PrevalenceScale: 70,
			FrequencyCap:    25,
			FrequencyScale:  8,
			BreadthWeight:   20,
			IntensityCap:    15,
			IntensityDiv:    8,
		},
		Bands: []Band{
			{Min: 70, Label: "severely disrupted"},
			{Min: 45, Label: "disrupted"},
			{Min: 20, Label: "mildly disrupted"},
			{Min: 0, Label: "healthy"},
		},
		DominanceThreshold: DefaultDominance,
		LateNightShare:     0.2,
	}
}

// Cognitive scores focus and memory strain.
func Cognitive() Descriptor {
	return Descriptor{
		Type: lexicon.DomainCognitive,
		Categories: []Category{
			{Name: "forgetfulness", Keywords: []string{"forgot", "forgetting", "can't remember"}},
			{Name: "focus", Keywords: []string{"can't focus", "cannot focus", "distracted", "can't concentrate", "hard to concentrate"}},
			{Name: "brain-fog", Keywords: []string{"brain fog", "foggy", "fuzzy"}, Severe: true},
			{Name: "confusion", Keywords: []string{"confused", "lost track"}},
			{Name: "overload", Keywords: []string{"overwhelmed", "overloaded", "too much going on"}, Severe: true},
			{Name: "indecision", Keywords: []string{"can't decide", "indecisive", "second-guessing"}},
		},
		Groups: []Group{
			{Name: "memory", Categories: []string{"forgetfulness", "brain-fog"}},
			{Name: "attention", Categories: []string{"focus", "confusion", "overload", "indecision"}},
		},
		Flags: []Flag{
			{Name: "brain-fog", Categories: []string{"brain-fog"}},
			{Name: "overload", Categories: []string{"overload"}},
		},
		Formula: Formula{
			PrevalenceCap:   40,
			PrevalenceScale: 60,
			FrequencyCap:    25,
			FrequencyScale:  8,
			BreadthWeight:   20,
			IntensityCap:    15,
			IntensityDiv:    10,
		},
		Bands: []Band{
			{Min: 70, Label: "impaired"},
			{Min: 45, Label: "strained"},
			{Min: 20, Label: "mild strain"},
			{Min: 0, Label: "clear"},
		},
		DominanceThreshold: DefaultDominance,
	}
}

// Emotion scores negative affect, offset by positive moments.
func Emotion() Descriptor {
	return Descriptor{
		Type: lexicon.DomainEmotion,
		Categories: []Category{
			{Name: "sadness", Keywords: []string{"sad", "feeling down", "depressed", "crying", "hopeless"}, Severe: true},
			{Name: "anger", Keywords: []string{"angry", "furious", "pissed off", "rage"}},
			{Name: "anxiety", Keywords: []string{"anxious", "anxiety", "panic", "nervous", "worried"}, Severe: true},
			{Name: "frustration", Keywords: []string{"frustrated", "annoyed", "fed up"}},
			{Name: "loneliness", Keywords: []string{"lonely", "isolated", "nobody to talk to"}},
			{Name: "joy", Keywords: []string{"happy", "excited", "great day", "proud"}, Relief: true},
			{Name: "calm", Keywords: []string{"calm", "relaxed", "peaceful", "grateful"}, Relief: true},
		},
		Groups: []Group{
			{Name: "low-mood", Categories: []string{"sadness", "loneliness"}},
			{Name: "anxious", Categories: []string{"anxiety"}},
			{Name: "irritable", Categories: []string{"anger", "frustration"}},
		},
		Flags: []Flag{
			{Name: "anxiety", Categories: []string{"anxiety"}},
			{Name: "positive-moments", Categories: []string{"joy", "calm"}},
		},
		Formula: Formula{
			PrevalenceCap:   40,
			PrevalenceScale: 70,
			FrequencyCap:    25,
			FrequencyScale:  8,
			BreadthWeight:   20,
			IntensityCap:    15,
			IntensityDiv:    10,
			ReliefCap:       10,
			ReliefScale:     30,
		},
		Bands: []Band{
			{Min: 70, Label: "distressed"},
			{Min: 45, Label: "strained"},
			{Min: 20, Label: "unsettled"},
			{Min: 0, Label: "balanced"},
		},
		DominanceThreshold: DefaultDominance,
	}
}

// WorkStress scores workplace pressure.
func WorkStress() Descriptor {
	return Descriptor{
		Type: lexicon.DomainWork,
		Categories: []Category{
			{Name: "deadlines", Keywords: []string{"deadline", "due date", "crunch"}},
			{Name: "overtime", Keywords: []string{"overtime", "working late", "weekend work"}, Severe: true},
			{Name: "meetings", Keywords: []string{"meeting", "back-to-back", "standup"}},
			{Name: "management", Keywords: []string{"boss", "manager", "performance review"}},
			{Name: "workload", Keywords: []string{"workload", "swamped", "too many tasks", "behind on"}},
			{Name: "conflict", Keywords: []string{"conflict", "argument", "blamed"}},
			{Name: "burnout", Keywords: []string{"burnout", "burned out", "burnt out", "quit my job"}, Severe: true},
			{Name: "night-shift", Keywords: []string{"night shift", "night-shift"}},
		},
		Groups: []Group{
			{Name: "workload", Categories: []string{"deadlines", "overtime", "meetings", "workload", "night-shift"}},
			{Name: "interpersonal", Categories: []string{"management", "conflict"}},
		},
		Flags: []Flag{
			{Name: "night-shift", Categories: []string{"night-shift"}},
			{Name: "overtime", Categories: []string{"overtime"}},
			{Name: "burnout", Categories: []string{"burnout"}},
		},
		Formula: Formula{
			PrevalenceCap:   40,
			PrevalenceScale: 60,
			FrequencyCap:    25,
			FrequencyScale:  8,
			BreadthWeight:   20,
			IntensityCap:    15,
			IntensityDiv:    10,
		},
		Bands: []Band{
			{Min: 70, Label: "critical"},
			{Min: 50, Label: "high"},
			{Min: 25, Label: "moderate"},
			{Min: 0, Label: "low"},
		},
		DominanceThreshold: DefaultDominance,
	}
}

// Defaults returns a fresh descriptor for every composite domain.
func Defaults() map[string]Descriptor {
	return map[string]Descriptor{
		lexicon.DomainFatigue:   Fatigue(),
		lexicon.DomainSleep:     Sleep(),
		lexicon.DomainCognitive: Cognitive(),
		lexicon.DomainEmotion:   Emotion(),
		lexicon.DomainWork:      WorkStress(),
	}
}

// WithCategories returns a copy of d whose named categories use the given
// keywords. Unknown names are added as plain categories in sorted order.
func (d Descriptor) WithCategories(overrides map[string][]string) Descriptor {
	if len(overrides) == 0 {
		return d
	}
	out := d
	out.Categories = make([]Category, len(d.Categories))
	copy(out.Categories, d.Categories)

	known := make(map[string]bool, len(out.Categories))
	for i, c := range out.Categories {
		known[c.Name] = true
		if kws, ok := overrides[c.Name]; ok {
			out.Categories[i].Keywords = append([]string(nil), kws...)
		}
	}

	var added []string
	for name := range overrides {
		if !known[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		out.Categories = append(out.Categories, Category{
			Name:     name,
			Keywords: append([]string(nil), overrides[name]...),
		})
	}
	return out
}

// WithLexicon returns a copy of d whose vocabulary is lex. Category keywords
// lex does not weight, or weights with the wrong sign, are dropped. Positive
// keywords no category claims are counted under "other" and negative ones
// under "relief". An empty lex leaves d unchanged.
func (d Descriptor) WithLexicon(lex lexicon.Lexicon) Descriptor {
	if lex.Len() == 0 {
		return d
	}
	out := d
	out.Categories = make([]Category, 0, len(d.Categories)+2)

	claimed := map[string]bool{}
	reliefAt := -1
	for _, c := range d.Categories {
		kept := c
		kept.Keywords = nil
		for _, kw := range c.Keywords {
			w := lex.Weight(kw)
			if w == 0 || (w < 0) != c.Relief {
				continue
			}
			kept.Keywords = append(kept.Keywords, kw)
			claimed[lexicon.Normalize(kw)] = true
		}
		if c.Relief && reliefAt < 0 {
			reliefAt = len(out.Categories)
		}
		out.Categories = append(out.Categories, kept)
	}

	var other, relief []string
	for _, kw := range lex.Keywords() {
		if claimed[kw] {
			continue
		}
		if lex.Weight(kw) < 0 {
			relief = append(relief, kw)
		} else {
			other = append(other, kw)
		}
	}
	if len(other) > 0 {
		out.Categories = append(out.Categories, Category{Name: "other", Keywords: other})
	}
	if len(relief) > 0 {
		if reliefAt >= 0 {
			out.Categories[reliefAt].Keywords = append(out.Categories[reliefAt].Keywords, relief...)
		} else {
			out.Categories = append(out.Categories, Category{Name: "relief", Keywords: relief, Relief: true})
		}
	}
	return out
}

// Keywords lists every keyword of d's scored (non-relief) categories.
func (d Descriptor) Keywords() []string {
	var out []string
	for _, c := range d.Categories {
		if !c.Relief {
			out = append(out, c.Keywords...)
		}
	}
	return out
}
