// Package score combines alignment operations and per-unit features into the
// final pronunciation report, and hosts the [Engine] that wires the whole
// pipeline together: reference text and audio in, [Report] out.
package score

import (
	"github.com/LQ758/phonoscore/internal/align"
)

// Mode selects the report verbosity.
type Mode string

const (
	// ModeSimple returns only the overall score and sequence counts.
	ModeSimple Mode = "simple"

	// ModeDetailed additionally includes per-unit scores, per-word rollups,
	// and the timing analysis.
	ModeDetailed Mode = "detailed"
)

// IsValid reports whether m is a recognised mode.
func (m Mode) IsValid() bool {
	return m == ModeSimple || m == ModeDetailed
}

// Level is a coarse quality label derived from a 0–100 score.
type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelFair      Level = "fair"
	LevelPoor      Level = "poor"
)

// LevelFor buckets a 0–100 score into a [Level]. Thresholds follow the
// usual language-lab grading bands: 90/75/60.
func LevelFor(score float64) Level {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 60:
		return LevelFair
	default:
		return LevelPoor
	}
}

// UnitScore is the per-aligned-unit result included in detailed reports.
type UnitScore struct {
	// ExpectedSymbol is the reference phoneme, empty for insertions.
	ExpectedSymbol string `json:"expected_symbol,omitempty"`

	// DecodedSymbol is what the model heard, nil for deletions.
	DecodedSymbol *string `json:"decoded_symbol"`

	// Word is the reference word the expected unit belongs to, empty for
	// insertions.
	Word string `json:"word,omitempty"`

	// OpKind is the alignment operation kind.
	OpKind align.OpKind `json:"op_kind"`

	// Component scores, each in [0, 1]. Zero on all three for gaps.
	DurationScore    float64 `json:"duration_score"`
	QualityScore     float64 `json:"quality_score"`
	ConsistencyScore float64 `json:"consistency_score"`

	// CombinedScore is the weighted, penalty-attenuated unit score in [0, 1].
	CombinedScore float64 `json:"combined_score"`

	// Level buckets the combined score.
	Level Level `json:"level"`
}

// WordScore is the per-reference-word rollup included in detailed reports.
type WordScore struct {
	// Word is the normalized reference word.
	Word string `json:"word"`

	// Score is the mean combined score of the word's units, scaled to 0–100.
	Score float64 `json:"score"`

	// Level buckets the word score.
	Level Level `json:"level"`

	// Units is how many expected phoneme units the word expands to.
	Units int `json:"units"`

	// NeedsImprovement flags words scoring below the fair band or
	// containing a dropped/poor unit.
	NeedsImprovement bool `json:"needs_improvement"`
}

// TimingAnalysis summarizes speaking rate for detailed reports.
type TimingAnalysis struct {
	// TotalFrames is the number of acoustic frames in the utterance.
	TotalFrames int `json:"total_frames"`

	// PhonemesPerSecond is the decoded label rate over the utterance.
	PhonemesPerSecond float64 `json:"phonemes_per_second"`

	// MeanUnitFrames is the mean decoded label span in frames.
	MeanUnitFrames float64 `json:"mean_unit_frames"`
}

// Report is the final scoring output.
//
// Units, Words, and Timing are populated only in detailed mode and omitted
// from the serialized form otherwise; the Mode field disambiguates the two
// variants for consumers.
type Report struct {
	// OverallScore is the rounded final score in [0, 100].
	OverallScore int `json:"overall_score"`

	// Level buckets the overall score.
	Level Level `json:"level"`

	// Mode records which verbosity produced this report.
	Mode Mode `json:"mode"`

	// ExpectedLength is the number of expected phoneme units.
	ExpectedLength int `json:"expected_length"`

	// DecodedLength is the number of decoded labels.
	DecodedLength int `json:"decoded_length"`

	// Units holds per-unit scores in alignment order. Detailed mode only.
	Units []UnitScore `json:"units,omitempty"`

	// Words holds per-word rollups in reference order. Detailed mode only.
	Words []WordScore `json:"words,omitempty"`

	// Timing holds the speaking-rate summary. Detailed mode only.
	Timing *TimingAnalysis `json:"timing,omitempty"`
}
