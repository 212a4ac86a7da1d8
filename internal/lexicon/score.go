package lexicon

import (
	"strings"
	"unicode/utf8"

	"github.com/lazypower/pulse/internal/corpus"
)

// Mode selects how keyword occurrences are tallied.
type Mode int

const (
	// Presence counts each message at most once per keyword.
	Presence Mode = iota
	// Hits counts every non-overlapping occurrence.
	Hits
)

// Counts maps keyword to tally. Keywords with no matches are present with 0.
type Counts map[string]int

// Total sums the counts of the given keys.
func (c Counts) Total(keys ...string) int {
	n := 0
	for _, k := range keys {
		n += c[k]
	}
	return n
}

// Nonzero returns how many of keys have a positive count.
func (c Counts) Nonzero(keys ...string) int {
	n := 0
	for _, k := range keys {
		if c[k] > 0 {
			n++
		}
	}
	return n
}

// Fold returns the case-folded contents of msgs, index-aligned.
func Fold(msgs []corpus.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = Normalize(m.Content)
	}
	return out
}

// PresenceCounts counts, per keyword, the messages that contain it.
func PresenceCounts(msgs []corpus.Message, keywords []string) Counts {
	return presence(Fold(msgs), foldKeys(keywords))
}

// HitCounts counts, per keyword, every occurrence across msgs.
func HitCounts(msgs []corpus.Message, keywords []string) Counts {
	return hits(Fold(msgs), foldKeys(keywords))
}

// ScoreMessages tallies the lexicon's keywords over msgs in the given mode.
func ScoreMessages(msgs []corpus.Message, lex Lexicon, mode Mode) Counts {
	if mode == Hits {
		return hits(Fold(msgs), lex.keys)
	}
	return presence(Fold(msgs), lex.keys)
}

// Matching returns the messages containing keyword, preserving order.
func Matching(msgs []corpus.Message, keyword string) []corpus.Message {
	keyword = Normalize(keyword)
	if keyword == "" {
		return nil
	}
	var out []corpus.Message
	for _, m := range msgs {
		if strings.Contains(Normalize(m.Content), keyword) {
			out = append(out, m)
		}
	}
	return out
}

// ContainsAny reports whether folded text contains any of the folded keywords.
func ContainsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// Snippet truncates text to at most n characters, never splitting a rune.
func Snippet(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

func presence(folded []string, keys []string) Counts {
	c := make(Counts, len(keys))
	for _, k := range keys {
		c[k] = 0
	}
	for _, text := range folded {
		for _, k := range keys {
			if k != "" && strings.Contains(text, k) {
				c[k]++
			}
		}
	}
	return c
}

func hits(folded []string, keys []string) Counts {
	c := make(Counts, len(keys))
	for _, k := range keys {
		c[k] = 0
	}
	for _, text := range folded {
		for _, k := range keys {
			if k != "" {
				c[k] += strings.Count(text, k)
			}
		}
	}
	return c
}

func foldKeys(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = Normalize(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
