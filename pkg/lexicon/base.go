package lexicon

import (
	_ "embed"
	"strings"
)

//go:embed basedict.tsv
var baseDict string

// Base returns a dictionary pre-populated with the embedded common-word
// entries. The embedded file is validated at build time by the package tests,
// so a parse failure here indicates a corrupted binary and panics.
func Base() *Dictionary {
	d := New()
	if err := d.Load(strings.NewReader(baseDict)); err != nil {
		panic("lexicon: embedded base dictionary is malformed: " + err.Error())
	}
	return d
}
