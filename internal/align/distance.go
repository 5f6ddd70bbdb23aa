package align

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default substitution costs. Confusing a phoneme for another of the same
// articulatory class (AE for EH, T for D) is a much smaller error than an
// unrelated substitution, so it costs half.
const (
	defaultWithinClassCost = 0.5
	defaultCrossClassCost  = 1.0
)

// DistanceTable resolves the substitution cost between two phoneme symbols.
//
// Resolution order: identical symbols cost 0; an explicit symbol-pair entry
// wins if present (pairs are symmetric); otherwise the cost falls back to
// the articulatory class of the two symbols — reduced within a class, full
// across classes. The table is read-only after construction and safe for
// concurrent use.
type DistanceTable struct {
	pairs       map[[2]string]float64
	classes     map[string]string
	withinClass float64
	crossClass  float64
}

// Cost returns the substitution cost between symbols a and b, in [0, 1].
func (t *DistanceTable) Cost(a, b string) float64 {
	if a == b {
		return 0
	}
	if c, ok := t.pairs[pairKey(a, b)]; ok {
		return c
	}
	ca, aok := t.classes[a]
	cb, bok := t.classes[b]
	if aok && bok && ca == cb {
		return t.withinClass
	}
	return t.crossClass
}

// pairKey builds an order-independent map key for a symbol pair.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// distanceFile is the YAML schema for phonetic distance table files.
type distanceFile struct {
	WithinClassCost *float64             `yaml:"within_class_cost"`
	CrossClassCost  *float64             `yaml:"cross_class_cost"`
	Classes         map[string][]string  `yaml:"classes"`
	Pairs           []distancePairEntry  `yaml:"pairs"`
}

type distancePairEntry struct {
	A    string  `yaml:"a"`
	B    string  `yaml:"b"`
	Cost float64 `yaml:"cost"`
}

// LoadDistanceTable reads a phonetic distance table from a YAML file:
//
//	within_class_cost: 0.5
//	cross_class_cost: 1.0
//	classes:
//	  vowel: [AA, AE, AH]
//	  stop:  [P, B, T, D, K, G]
//	pairs:
//	  - {a: S, b: Z, cost: 0.3}
//
// Costs outside [0, 1] are rejected.
func LoadDistanceTable(path string) (*DistanceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("align: open distance table %q: %w", path, err)
	}

	var df distanceFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("align: parse distance table %q: %w", path, err)
	}

	t := &DistanceTable{
		pairs:       make(map[[2]string]float64, len(df.Pairs)),
		classes:     make(map[string]string),
		withinClass: defaultWithinClassCost,
		crossClass:  defaultCrossClassCost,
	}
	if df.WithinClassCost != nil {
		t.withinClass = *df.WithinClassCost
	}
	if df.CrossClassCost != nil {
		t.crossClass = *df.CrossClassCost
	}
	if err := validCost("within_class_cost", t.withinClass); err != nil {
		return nil, err
	}
	if err := validCost("cross_class_cost", t.crossClass); err != nil {
		return nil, err
	}

	for class, symbols := range df.Classes {
		for _, s := range symbols {
			if prev, ok := t.classes[s]; ok && prev != class {
				return nil, fmt.Errorf("align: distance table %q: symbol %q in classes %q and %q", path, s, prev, class)
			}
			t.classes[s] = class
		}
	}
	for _, p := range df.Pairs {
		if err := validCost(fmt.Sprintf("pair %s/%s", p.A, p.B), p.Cost); err != nil {
			return nil, err
		}
		t.pairs[pairKey(p.A, p.B)] = p.Cost
	}
	return t, nil
}

func validCost(name string, c float64) error {
	if c < 0 || c > 1 {
		return fmt.Errorf("align: %s cost %.3f is out of range [0, 1]", name, c)
	}
	return nil
}

// DefaultDistanceTable returns the built-in table for the ARPABET inventory,
// grouping symbols by articulatory class.
func DefaultDistanceTable() *DistanceTable {
	classes := map[string][]string{
		"vowel":     {"AA", "AE", "AH", "AO", "AW", "AY", "EH", "ER", "EY", "IH", "IY", "OW", "OY", "UH", "UW"},
		"stop":      {"P", "B", "T", "D", "K", "G"},
		"fricative": {"F", "V", "S", "Z", "SH", "ZH", "TH", "DH", "HH"},
		"affricate": {"CH", "JH"},
		"nasal":     {"M", "N", "NG"},
		"liquid":    {"L", "R"},
		"glide":     {"W", "Y"},
	}
	t := &DistanceTable{
		pairs:       make(map[[2]string]float64),
		classes:     make(map[string]string),
		withinClass: defaultWithinClassCost,
		crossClass:  defaultCrossClassCost,
	}
	for class, symbols := range classes {
		for _, s := range symbols {
			t.classes[s] = class
		}
	}
	// Voicing pairs are the most common learner confusions; cheaper still.
	for _, p := range [][2]string{{"S", "Z"}, {"F", "V"}, {"TH", "DH"}, {"SH", "ZH"}, {"P", "B"}, {"T", "D"}, {"K", "G"}, {"CH", "JH"}} {
		t.pairs[pairKey(p[0], p[1])] = 0.3
	}
	return t
}
