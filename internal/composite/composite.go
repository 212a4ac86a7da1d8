// Package composite computes 0-100 domain indexes from grouped keyword counts.
//
// Every domain uses the same scorer. A Descriptor supplies the lexicon
// (categories of keywords), the formula weights, the label bands and the
// facets to derive; nothing in this package is domain specific.
package composite

import (
	"math"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/lexicon"
)

// LabelInsufficientData is used when the window holds no messages.
const LabelInsufficientData = "insufficient data"

// SubTypeNone and SubTypeMixed are the non-dominant sub-types.
const (
	SubTypeNone  = "none"
	SubTypeMixed = "mixed"
)

// Category is a family of keywords counted together.
type Category struct {
	Name     string
	Keywords []string
	// Severe categories feed the intensity component.
	Severe bool
	// Relief categories offset the score and are excluded from breadth.
	Relief bool
}

// Group names a sub-type made of several categories.
type Group struct {
	Name       string
	Categories []string
}

// Flag is set when any of its categories has a nonzero count.
type Flag struct {
	Name       string
	Categories []string
}

// Formula weights the score components.
type Formula struct {
	PrevalenceCap   float64
	PrevalenceScale float64
	FrequencyCap    float64
	FrequencyScale  float64
	BreadthWeight   float64
	IntensityCap    float64
	IntensityDiv    float64
	ReliefCap       float64
	ReliefScale     float64
}

// Band maps a minimum score to a label. Bands are checked in order.
type Band struct {
	Min   float64
	Label string
}

// Descriptor fully specifies one domain scorer.
type Descriptor struct {
	Type               string
	Categories         []Category
	Groups             []Group
	Flags              []Flag
	Formula            Formula
	Bands              []Band
	DominanceThreshold float64
	// LateNightShare sets the late-night-activity flag when at least this
	// share of all messages falls between midnight and 5am. Zero disables it.
	LateNightShare float64
}

// Inputs are the raw tallies a formula consumes.
type Inputs struct {
	Counts         lexicon.Counts `json:"counts"`
	UniqueMessages int            `json:"unique_messages"`
	ReliefMessages int            `json:"relief_messages"`
	TotalMessages  int            `json:"total_messages"`
	TimeframeDays  int            `json:"timeframe_days"`
}

// Score is a domain's composite index.
type Score struct {
	Type           string             `json:"score_type"`
	Value          int                `json:"value"`
	Subscores      map[string]float64 `json:"subscores"`
	Classification string             `json:"classification"`
}

// Compute applies the formula to in. The result is always within [0, 100];
// zero denominators contribute 0.
func (d Descriptor) Compute(in Inputs) Score {
	f := d.Formula
	total := float64(in.TotalMessages)
	unique := float64(in.UniqueMessages)

	var scored, severe []string
	for _, c := range d.Categories {
		if c.Relief {
			continue
		}
		scored = append(scored, c.Name)
		if c.Severe {
			severe = append(severe, c.Name)
		}
	}

	prevalence := math.Min(f.PrevalenceCap, ratio(unique, total)*f.PrevalenceScale)
	frequency := math.Min(f.FrequencyCap, ratio(unique, float64(in.TimeframeDays))*f.FrequencyScale)
	breadth := ratio(float64(in.Counts.Nonzero(scored...)), float64(len(scored))) * f.BreadthWeight
	intensity := math.Min(f.IntensityCap, ratio(float64(in.Counts.Total(severe...)), f.IntensityDiv)*f.IntensityCap)
	relief := math.Min(f.ReliefCap, ratio(float64(in.ReliefMessages), total)*f.ReliefScale)

	value := int(math.Round(clamp(prevalence+frequency+breadth+intensity-relief, 0, 100)))

	label := LabelInsufficientData
	if in.TotalMessages > 0 {
		label = d.label(float64(value))
	}

	return Score{
		Type:  d.Type,
		Value: value,
		Subscores: map[string]float64{
			"prevalence": prevalence,
			"frequency":  frequency,
			"breadth":    breadth,
			"intensity":  intensity,
			"relief":     relief,
		},
		Classification: label,
	}
}

func (d Descriptor) label(value float64) string {
	for _, b := range d.Bands {
		if value >= b.Min {
			return b.Label
		}
	}
	if len(d.Bands) > 0 {
		return d.Bands[len(d.Bands)-1].Label
	}
	return ""
}

// SubType returns the group shares (rounded percentages) and the dominant
// sub-type: "{group}-dominant" when one group's share exceeds the dominance
// threshold, "mixed" otherwise, "none" when no group has any count.
func (d Descriptor) SubType(counts lexicon.Counts) (map[string]int, string) {
	totals := make(map[string]int, len(d.Groups))
	sum := 0
	for _, g := range d.Groups {
		t := counts.Total(g.Categories...)
		totals[g.Name] = t
		sum += t
	}

	pct := make(map[string]int, len(d.Groups))
	if sum == 0 {
		for _, g := range d.Groups {
			pct[g.Name] = 0
		}
		return pct, SubTypeNone
	}

	subType := SubTypeMixed
	for _, g := range d.Groups {
		share := float64(totals[g.Name]) / float64(sum) * 100
		pct[g.Name] = int(math.Round(share))
		if share > d.DominanceThreshold && subType == SubTypeMixed {
			subType = g.Name + "-dominant"
		}
	}
	return pct, subType
}

// Options control facet derivation.
type Options struct {
	// Location is used for hour and weekday facets. Nil means UTC.
	Location *time.Location
	// MinMessages is the corpus size at which confidence reaches 1.
	MinMessages int
}

// Result is a scored domain with its facets.
type Result struct {
	Score            Score           `json:"score"`
	Inputs           Inputs          `json:"inputs"`
	GroupPercentages map[string]int  `json:"group_percentages"`
	SubType          string          `json:"sub_type"`
	PeakHour         *int            `json:"peak_hour"`
	DominantWeekday  string          `json:"dominant_weekday"`
	LateNightShare   float64         `json:"late_night_share"`
	Flags            map[string]bool `json:"flags"`
	Confidence       float64         `json:"confidence"`
}

// Analyze counts the descriptor's categories over msgs and scores them.
func (d Descriptor) Analyze(msgs []corpus.Message, timeframeDays int, opts Options) Result {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	folded := lexicon.Fold(msgs)
	keys := make([][]string, len(d.Categories))
	for i, c := range d.Categories {
		for _, k := range c.Keywords {
			if k = lexicon.Normalize(k); k != "" {
				keys[i] = append(keys[i], k)
			}
		}
	}

	in := Inputs{
		Counts:        make(lexicon.Counts, len(d.Categories)),
		TotalMessages: len(msgs),
		TimeframeDays: timeframeDays,
	}
	for _, c := range d.Categories {
		in.Counts[c.Name] = 0
	}

	var hours [24]int
	var weekdays [7]int
	lateNight := 0
	for mi, text := range folded {
		local := msgs[mi].Timestamp.In(loc)
		if local.Hour() < 5 {
			lateNight++
		}

		matched, relief := false, false
		for ci, c := range d.Categories {
			if !lexicon.ContainsAny(text, keys[ci]) {
				continue
			}
			in.Counts[c.Name]++
			if c.Relief {
				relief = true
			} else {
				matched = true
			}
		}
		if relief {
			in.ReliefMessages++
		}
		if matched {
			in.UniqueMessages++
			hours[local.Hour()]++
			weekdays[(int(local.Weekday())+6)%7]++
		}
	}

	res := Result{
		Score:           d.Compute(in),
		Inputs:          in,
		DominantWeekday: SubTypeNone,
		Flags:           make(map[string]bool, len(d.Flags)+1),
	}
	res.GroupPercentages, res.SubType = d.SubType(in.Counts)

	if h := argMax(hours[:]); h >= 0 {
		res.PeakHour = &h
	}
	if wd := argMax(weekdays[:]); wd >= 0 {
		res.DominantWeekday = time.Weekday((wd + 1) % 7).String()
	}

	for _, f := range d.Flags {
		res.Flags[f.Name] = in.Counts.Total(f.Categories...) > 0
	}
	res.LateNightShare = ratio(float64(lateNight), float64(len(msgs)))
	if d.LateNightShare > 0 {
		res.Flags["late-night-activity"] = len(msgs) > 0 && res.LateNightShare >= d.LateNightShare
	}

	res.Confidence = confidence(len(msgs), opts.MinMessages)
	return res
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

// argMax returns the first index holding the largest positive value, or -1.
func argMax(xs []int) int {
	best, idx := 0, -1
	for i, x := range xs {
		if x > best {
			best, idx = x, i
		}
	}
	return idx
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
