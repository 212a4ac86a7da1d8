package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk lexicon override format:
//
//	weights:
//	  stress:
//	    deadline: 9
//	    meeting: 0     # removes the keyword
//	  fatigue:
//	    knackered: 5   # scored under "other"
//	categories:
//	  fatigue:
//	    tired: [tired, worn out, drained]
//
// Weights for a composite domain set the vocabulary its descriptor counts.
// Category overrides are applied after weights.
type File struct {
	Weights    map[string]map[string]float64   `yaml:"weights"`
	Categories map[string]map[string][]string `yaml:"categories"`
}

// LoadFile reads a YAML lexicon override file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML lexicon overrides.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	for domain, cats := range f.Categories {
		for name, kws := range cats {
			if len(kws) == 0 {
				return nil, fmt.Errorf("lexicon file: category %s/%s has no keywords", domain, name)
			}
		}
	}
	return &f, nil
}

// Apply merges the file's weight overrides into s.
func (f *File) Apply(s Set) Set {
	if f == nil {
		return s
	}
	return s.Merge(f.Weights)
}
