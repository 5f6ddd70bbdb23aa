// Package durations provides the expected-duration model consumed by the
// quality estimator: for each phoneme symbol, the range of acoustic-model
// frames a well-articulated realization is expected to span.
//
// Ranges are expressed in frame units so the model is independent of the
// audio sample rate; at the usual 50 frames/second one frame is 20ms.
// A built-in model derived from published English phoneme duration norms is
// available via [Default]; deployments override it with a YAML file.
package durations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is the expected duration band for one phoneme, in frames.
// A realization inside [Min, Max] counts as a perfect duration.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Model maps phoneme symbols to expected duration ranges.
type Model struct {
	ranges   map[string]Range
	fallback Range
}

// New builds a model from explicit ranges. fallback is used for symbols not
// present in ranges and must be a valid range itself.
func New(ranges map[string]Range, fallback Range) (*Model, error) {
	if err := validRange("fallback", fallback); err != nil {
		return nil, err
	}
	for sym, r := range ranges {
		if err := validRange(sym, r); err != nil {
			return nil, err
		}
	}
	cp := make(map[string]Range, len(ranges))
	for k, v := range ranges {
		cp[k] = v
	}
	return &Model{ranges: cp, fallback: fallback}, nil
}

func validRange(name string, r Range) error {
	if r.Min <= 0 || r.Max < r.Min {
		return fmt.Errorf("durations: range for %q is invalid: min=%d max=%d", name, r.Min, r.Max)
	}
	return nil
}

// Expected returns the duration range for a phoneme symbol, falling back to
// the model's default range for unknown symbols.
func (m *Model) Expected(symbol string) Range {
	if r, ok := m.ranges[symbol]; ok {
		return r
	}
	return m.fallback
}

// Known reports whether the model carries an explicit range for symbol.
func (m *Model) Known(symbol string) bool {
	_, ok := m.ranges[symbol]
	return ok
}

// modelFile is the YAML schema for duration model files.
type modelFile struct {
	Fallback Range            `yaml:"fallback"`
	Phonemes map[string]Range `yaml:"phonemes"`
}

// LoadFile reads a duration model from a YAML file of the form:
//
//	fallback: {min: 2, max: 12}
//	phonemes:
//	  AE: {min: 4, max: 8}
//	  T:  {min: 1, max: 4}
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("durations: open %q: %w", path, err)
	}

	var mf modelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("durations: parse %q: %w", path, err)
	}

	m, err := New(mf.Phonemes, mf.Fallback)
	if err != nil {
		return nil, fmt.Errorf("durations: %q: %w", path, err)
	}
	return m, nil
}

// Default returns the built-in English duration model. Vowels run longer
// than stops; fricatives sit in between. Values assume 20ms frames.
func Default() *Model {
	m, err := New(map[string]Range{
		// Short vowels.
		"AE": {4, 8}, "EH": {3, 7}, "IH": {3, 6}, "UH": {3, 6}, "AH": {3, 6}, "AA": {4, 9}, "AO": {4, 9},
		// Long vowels and diphthongs.
		"IY": {5, 10}, "UW": {5, 10}, "ER": {6, 13}, "EY": {5, 11}, "AY": {5, 11}, "AW": {5, 11}, "OY": {5, 11}, "OW": {5, 11},
		// Stops.
		"P": {1, 4}, "B": {2, 5}, "T": {1, 4}, "D": {2, 5}, "K": {1, 4}, "G": {2, 5},
		// Fricatives.
		"F": {4, 8}, "V": {3, 6}, "TH": {3, 7}, "DH": {2, 6}, "S": {4, 9}, "Z": {3, 8}, "SH": {4, 8}, "ZH": {3, 7}, "HH": {2, 5},
		// Affricates.
		"CH": {3, 7}, "JH": {3, 7},
		// Nasals, liquids, glides.
		"M": {3, 7}, "N": {3, 7}, "NG": {3, 7}, "L": {3, 7}, "R": {3, 7}, "W": {2, 6}, "Y": {2, 5},
	}, Range{Min: 2, Max: 10})
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return m
}
