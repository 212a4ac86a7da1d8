package lexicon

// Domain names used as lexicon and descriptor keys.
const (
	DomainStress    = "stress"
	DomainFatigue   = "fatigue"
	DomainSleep     = "sleep"
	DomainCognitive = "cognitive"
	DomainEmotion   = "emotion"
	DomainWork      = "work-stress"
)

// Set holds one lexicon per domain.
type Set map[string]Lexicon

// Get returns the lexicon for domain, or an empty lexicon named after it.
func (s Set) Get(domain string) Lexicon {
	if l, ok := s[domain]; ok {
		return l
	}
	return New(domain, nil)
}

// Stress returns the stress-trigger lexicon.
func (s Set) Stress() Lexicon {
	return s.Get(DomainStress)
}

// Defaults returns a fresh copy of the built-in weighted lexicons. The
// composite domain lexicons are the vocabulary of the matching descriptor:
// positive weights are scored, negative weights are relief terms.
func Defaults() Set {
	return Set{
		DomainStress: New(DomainStress, map[string]float64{
			"deadline":    8,
			"overtime":    9,
			"night-shift": 9,
			"night shift": 9,
			"pressure":    7,
			"stressed":    8,
			"anxious":     8,
			"anxiety":     8,
			"panic":       9,
			"overwhelmed": 8,
			"burnout":     10,
			"exhausted":   7,
			"can't sleep": 7,
			"insomnia":    7,
			"worried":     6,
			"boss":        5,
			"conflict":    6,
			"argument":    6,
			"workload":    6,
			"meeting":     3,
			"debt":        7,
			"bills":       5,
			"sick":        5,
			"lonely":      6,
			"vacation":    -5,
			"day off":     -4,
			"relaxed":     -4,
			"holiday":     -4,
		}),
		DomainFatigue: New(DomainFatigue, map[string]float64{
			"tired":                   4,
			"fatigued":                4,
			"worn out":                5,
			"drained":                 5,
			"sluggish":                4,
			"lethargic":               4,
			"no energy":               5,
			"exhausted":               7,
			"wiped out":               7,
			"running on empty":        7,
			"headache":                5,
			"migraine":                7,
			"sleepy":                  3,
			"drowsy":                  3,
			"can't keep my eyes open": 4,
			"unmotivated":             6,
			"no motivation":           6,
			"can't be bothered":       5,
		}),
		DomainSleep: New(DomainSleep, map[string]float64{
			"insomnia":         7,
			"can't sleep":      7,
			"cannot sleep":     7,
			"couldn't sleep":   7,
			"trouble sleeping": 6,
			"up all night":     8,
			"all-nighter":      8,
			"stayed up":        5,
			"2am":              5,
			"3am":              6,
			"4am":              6,
			"restless":         4,
			"woke up":          3,
			"nightmare":        5,
			"tossing":          4,
			"sleepy":           3,
			"drowsy":           3,
			"nodding off":      4,
			"nap":              2,
			"overslept":        3,
			"slept in":         2,
			"slept all day":    5,
			"night shift":      6,
			"night-shift":      6,
			"graveyard shift":  6,
		}),
		DomainCognitive: New(DomainCognitive, map[string]float64{
			"forgot":              4,
			"forgetting":          4,
			"can't remember":      5,
			"can't focus":         6,
			"cannot focus":        6,
			"distracted":          4,
			"can't concentrate":   6,
			"hard to concentrate": 5,
			"brain fog":           7,
			"foggy":               5,
			"fuzzy":               4,
			"confused":            4,
			"lost track":          4,
			"overwhelmed":         6,
			"overloaded":          6,
			"too much going on":   5,
			"can't decide":        4,
			"indecisive":          4,
			"second-guessing":     4,
		}),
		DomainEmotion: New(DomainEmotion, map[string]float64{
			"sad":               5,
			"feeling down":      5,
			"depressed":         8,
			"crying":            6,
			"hopeless":          8,
			"angry":             6,
			"furious":           7,
			"pissed off":        6,
			"rage":              7,
			"anxious":           7,
			"anxiety":           7,
			"panic":             8,
			"nervous":           5,
			"worried":           5,
			"frustrated":        5,
			"annoyed":           4,
			"fed up":            5,
			"lonely":            6,
			"isolated":          6,
			"nobody to talk to": 7,
			"happy":             -4,
			"excited":           -4,
			"great day":         -5,
			"proud":             -4,
			"calm":              -3,
			"relaxed":           -4,
			"peaceful":          -4,
			"grateful":          -4,
		}),
		DomainWork: New(DomainWork, map[string]float64{
			"deadline":           8,
			"due date":           6,
			"crunch":             7,
			"overtime":           9,
			"working late":       7,
			"weekend work":       7,
			"meeting":            3,
			"back-to-back":       4,
			"standup":            2,
			"boss":               5,
			"manager":            4,
			"performance review": 6,
			"workload":           6,
			"swamped":            6,
			"too many tasks":     6,
			"behind on":          5,
			"conflict":           6,
			"argument":           6,
			"blamed":             6,
			"burnout":            10,
			"burned out":         10,
			"burnt out":          10,
			"quit my job":        9,
			"night shift":        6,
			"night-shift":        6,
		}),
	}
}

// Merge returns a new set where overrides replace or extend the weights of s.
func (s Set) Merge(overrides map[string]map[string]float64) Set {
	out := make(Set, len(s))
	for name, l := range s {
		out[name] = l
	}
	for name, weights := range overrides {
		out[name] = out.Get(name).With(weights)
	}
	return out
}
