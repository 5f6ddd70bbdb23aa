// Package lexicon provides the pronunciation dictionary consumed by the
// phoneme mapper: a word-to-phoneme-sequence lookup over an ARPABET-style
// symbol inventory.
//
// A base dictionary covering common English words is embedded in the binary
// ([Base]); deployments extend or replace it with a tab-separated file via
// [LoadFile]. Lookups are read-only after construction, so a Dictionary is
// safe for concurrent use once built.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is a single pronunciation for a word.
type Entry struct {
	// Word is the normalized (lowercase) headword.
	Word string

	// Phonemes is the ordered phoneme sequence, e.g. ["K", "AE", "T"].
	Phonemes []string
}

// Dictionary holds word-to-pronunciation mappings.
type Dictionary struct {
	entries map[string]Entry
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string]Entry)}
}

// Add registers a pronunciation, replacing any previous entry for the word.
// The word is lowercased; empty phoneme sequences are ignored.
func (d *Dictionary) Add(word string, phonemes []string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(phonemes) == 0 {
		return
	}
	d.entries[word] = Entry{Word: word, Phonemes: phonemes}
}

// Lookup returns the phoneme sequence for a normalized word.
// The second return value reports whether the word is known.
func (d *Dictionary) Lookup(word string) ([]string, bool) {
	e, ok := d.entries[strings.ToLower(word)]
	if !ok {
		return nil, false
	}
	return e.Phonemes, true
}

// Len returns the number of headwords in the dictionary.
func (d *Dictionary) Len() int { return len(d.entries) }

// Words returns all headwords in sorted order. Used for "did you mean"
// suggestion candidates and for dictionary diagnostics.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.entries))
	for w := range d.entries {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Load reads dictionary entries from r and merges them into d.
// Format: one entry per line, word<TAB>phoneme1 phoneme2 ...
// Blank lines and lines starting with '#' are skipped.
func (d *Dictionary) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, rest, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("lexicon: line %d: expected word<TAB>phonemes, got %q", lineNum, line)
		}
		phonemes := strings.Fields(rest)
		if len(phonemes) == 0 {
			return fmt.Errorf("lexicon: line %d: word %q has no phonemes", lineNum, word)
		}
		d.Add(word, phonemes)
	}
	return scanner.Err()
}

// LoadFile reads a dictionary file and merges it into d.
func (d *Dictionary) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lexicon: open %q: %w", path, err)
	}
	defer f.Close()

	if err := d.Load(f); err != nil {
		return fmt.Errorf("lexicon: parse %q: %w", path, err)
	}
	return nil
}
