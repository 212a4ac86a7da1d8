// Package lexicon holds weighted keyword lexicons and the tallies computed from them.
package lexicon

import (
	"sort"

	"golang.org/x/text/cases"
)

// Lexicon maps keywords to signed impact weights. The magnitude of a weight is
// its severity contribution; negative weights mark relief terms.
// A Lexicon is immutable once built.
type Lexicon struct {
	Name    string
	weights map[string]float64
	keys    []string
}

// New builds a lexicon. Keywords are case-folded; empty keywords are dropped.
func New(name string, weights map[string]float64) Lexicon {
	l := Lexicon{Name: name, weights: make(map[string]float64, len(weights))}
	for k, w := range weights {
		k = Normalize(k)
		if k == "" {
			continue
		}
		l.weights[k] = w
	}
	l.keys = make([]string, 0, len(l.weights))
	for k := range l.weights {
		l.keys = append(l.keys, k)
	}
	sort.Strings(l.keys)
	return l
}

// Keywords returns the keywords in lexical order.
func (l Lexicon) Keywords() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Weight returns the impact weight of keyword, or 0 if absent.
func (l Lexicon) Weight(keyword string) float64 {
	return l.weights[Normalize(keyword)]
}

// Has reports whether keyword is in the lexicon.
func (l Lexicon) Has(keyword string) bool {
	_, ok := l.weights[Normalize(keyword)]
	return ok
}

// Len returns the number of keywords.
func (l Lexicon) Len() int {
	return len(l.keys)
}

// Weights returns a copy of the keyword weights.
func (l Lexicon) Weights() map[string]float64 {
	out := make(map[string]float64, len(l.weights))
	for k, w := range l.weights {
		out[k] = w
	}
	return out
}

// With returns a new lexicon with overrides applied on top of l.
// A zero override weight removes the keyword.
func (l Lexicon) With(overrides map[string]float64) Lexicon {
	merged := l.Weights()
	for k, w := range overrides {
		k = Normalize(k)
		if w == 0 {
			delete(merged, k)
			continue
		}
		merged[k] = w
	}
	return New(l.Name, merged)
}

// Normalize case-folds s for case-insensitive matching.
func Normalize(s string) string {
	return cases.Fold().String(s)
}
