// Package phoneme converts normalized reference text into the ordered
// expected-phoneme sequence the aligner consumes.
//
// Mapping is a pure dictionary lookup: every word of the reference must be
// present in the pronunciation dictionary or the whole request fails with an
// [*UnmappableError]. Silently skipping an unknown word is never acceptable —
// the downstream alignment indexes into the expected sequence, and a dropped
// word would shift every index after it.
//
// For unmappable words the mapper attaches "did you mean" suggestions found
// by Double Metaphone phonetic encoding with Jaro-Winkler ranking over the
// dictionary headwords, so callers can offer a correction instead of a bare
// failure.
package phoneme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/LQ758/phonoscore/pkg/lexicon"
)

// ErrEmptyReference is returned when the reference text normalizes to
// nothing. An empty reference is a caller configuration mistake, not a
// scoreable input.
var ErrEmptyReference = errors.New("phoneme: reference text is empty")

// Unit is one atomic pronunciation unit of the expected sequence.
// Units are immutable once derived from the reference text.
type Unit struct {
	// Symbol is the phoneme symbol, e.g. "AE".
	Symbol string

	// Word is the normalized source word this unit was expanded from,
	// carried through to the report for per-word rollups.
	Word string

	// WordIndex is the position of the source word in the reference.
	WordIndex int

	// Index is the position of this unit in the expected sequence.
	Index int
}

// Suggestion is a dictionary headword phonetically close to an unmappable word.
type Suggestion struct {
	Word  string
	Score float64
}

// UnmappableError reports every reference word missing from the
// pronunciation dictionary, with optional nearest-headword suggestions.
type UnmappableError struct {
	// Words lists the missing normalized words in reference order.
	Words []string

	// Suggestions maps each missing word to its closest dictionary
	// headwords, best first. May be empty for a word with no close match.
	Suggestions map[string][]Suggestion
}

func (e *UnmappableError) Error() string {
	return fmt.Sprintf("phoneme: words not in pronunciation dictionary: %s", strings.Join(e.Words, ", "))
}

const (
	// suggestionThreshold is the minimum Jaro-Winkler score for a phonetic
	// candidate to be offered as a suggestion.
	suggestionThreshold = 0.70

	// maxSuggestions caps the suggestion list per missing word.
	maxSuggestions = 3
)

// Option is a functional option for configuring a [Mapper].
type Option func(*Mapper)

// WithoutSuggestions disables the phonetic "did you mean" pass. Useful when
// the dictionary is very large and the caller does not surface suggestions.
func WithoutSuggestions() Option {
	return func(m *Mapper) { m.suggest = false }
}

// Mapper expands reference text into expected phoneme units.
// It is read-only after construction and safe for concurrent use.
type Mapper struct {
	dict    *lexicon.Dictionary
	suggest bool
}

// NewMapper returns a Mapper over the given dictionary.
func NewMapper(dict *lexicon.Dictionary, opts ...Option) *Mapper {
	m := &Mapper{dict: dict, suggest: true}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Map converts reference text into the expected phoneme sequence.
//
// The text is normalized first: case-folded, punctuation stripped (word-inner
// apostrophes survive), whitespace collapsed. Word order is preserved and
// multi-phoneme words expand to consecutive units tagged with their source
// word. All unknown words are collected before failing, so the caller sees
// the full list at once.
func (m *Mapper) Map(referenceText string) ([]Unit, error) {
	words := Normalize(referenceText)
	if len(words) == 0 {
		return nil, ErrEmptyReference
	}

	var (
		units   []Unit
		missing []string
	)
	for wi, word := range words {
		phonemes, ok := m.dict.Lookup(word)
		if !ok {
			missing = append(missing, word)
			continue
		}
		for _, sym := range phonemes {
			units = append(units, Unit{
				Symbol:    sym,
				Word:      word,
				WordIndex: wi,
				Index:     len(units),
			})
		}
	}

	if len(missing) > 0 {
		err := &UnmappableError{Words: missing, Suggestions: map[string][]Suggestion{}}
		if m.suggest {
			for _, w := range missing {
				err.Suggestions[w] = m.nearest(w)
			}
		}
		return nil, err
	}
	return units, nil
}

// Normalize case-folds text, strips punctuation, and splits it into words.
// Apostrophes inside a word are kept ("don't"); everything else that is not
// a letter or digit becomes a word boundary.
func Normalize(text string) []string {
	var b strings.Builder
	runes := []rune(strings.ToLower(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// nearest finds dictionary headwords phonetically close to word: headwords
// sharing a Double Metaphone code are candidates, ranked by Jaro-Winkler
// similarity, best first.
func (m *Mapper) nearest(word string) []Suggestion {
	wp, ws := matchr.DoubleMetaphone(word)

	var candidates []Suggestion
	for _, head := range m.dict.Words() {
		hp, hs := matchr.DoubleMetaphone(head)
		if !codesOverlap(wp, ws, hp, hs) {
			continue
		}
		if score := matchr.JaroWinkler(word, head, false); score >= suggestionThreshold {
			candidates = append(candidates, Suggestion{Word: head, Score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Word < candidates[j].Word
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || (bs != "" && a == bs) {
			return true
		}
	}
	return false
}
