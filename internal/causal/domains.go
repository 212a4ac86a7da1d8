package causal

// DefaultDomains maps question cue words to the topic keywords they imply.
func DefaultDomains() map[string][]string {
	sleepish := []string{"night-shift", "night shift", "can't sleep", "insomnia", "overtime", "exhausted", "stressed"}
	workish := []string{"deadline", "overtime", "night-shift", "night shift", "boss", "meeting", "workload", "conflict", "burnout", "pressure"}
	moodish := []string{"lonely", "argument", "conflict", "anxious", "anxiety", "worried", "sick", "debt"}
	return map[string][]string{
		"sleep":     sleepish,
		"insomnia":  sleepish,
		"awake":     sleepish,
		"tired":     {"night-shift", "night shift", "overtime", "exhausted", "can't sleep", "insomnia", "workload", "sick"},
		"exhaust":   {"night-shift", "night shift", "overtime", "workload", "burnout", "can't sleep"},
		"energy":    {"exhausted", "sick", "can't sleep", "overtime"},
		"stress":    {"deadline", "pressure", "overwhelmed", "workload", "boss", "debt", "bills", "conflict", "panic"},
		"anxious":   {"anxious", "anxiety", "panic", "worried", "deadline", "debt"},
		"anxiety":   {"anxious", "anxiety", "panic", "worried", "deadline", "debt"},
		"work":      workish,
		"job":       workish,
		"boss":      {"boss", "conflict", "argument", "pressure"},
		"mood":      moodish,
		"sad":       moodish,
		"upset":     moodish,
		"angry":     {"argument", "conflict", "boss", "pressure"},
		"money":     {"debt", "bills"},
		"burn":      {"burnout", "overtime", "workload", "exhausted"},
		"overwhelm": {"overwhelmed", "workload", "deadline", "pressure"},
	}
}
