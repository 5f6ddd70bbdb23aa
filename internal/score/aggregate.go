package score

import (
	"fmt"
	"math"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/internal/quality"
)

// needsImprovementBand is the word-score threshold below which a word is
// flagged for targeted practice.
const needsImprovementBand = 70.0

// Aggregator folds alignment operations and their feature triples into a
// [Report]. It is read-only after construction and safe for concurrent use.
type Aggregator struct {
	weights Weights
}

// NewAggregator validates the weights and returns an Aggregator.
// Weight validation failures are startup configuration errors.
func NewAggregator(weights Weights) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: weights}, nil
}

// Aggregate computes the final report.
//
// Per-unit combined score for Match/Substitution is the weighted feature sum
// attenuated by the operation's alignment penalty, so a near-homophone
// substitution keeps most of its credit while an unrelated one loses it all.
// Insertions and deletions contribute 0. The overall score normalizes by the
// expected sequence length — omissions cost their full share and extra
// insertions cannot dilute the denominator.
//
// ops and feats must be parallel slices (one feature triple per operation);
// a mismatch, or an op sequence that does not cover both sequences exactly
// once, is an internal defect and fails loudly.
func (a *Aggregator) Aggregate(ops []align.Op, feats []quality.Features, mode Mode) (*Report, error) {
	if len(ops) != len(feats) {
		return nil, fmt.Errorf("%w: %d ops, %d feature triples", ErrAlignmentIncomplete, len(ops), len(feats))
	}

	var expectedLen, decodedLen int
	for _, op := range ops {
		if op.Expected != nil {
			expectedLen++
		}
		if op.Decoded != nil {
			decodedLen++
		}
	}

	combined := make([]float64, len(ops))
	var sum float64
	for i, op := range ops {
		if op.Kind == align.Insertion || op.Kind == align.Deletion {
			continue
		}
		f := feats[i]
		weighted := a.weights.Duration*f.Duration + a.weights.Quality*f.Quality + a.weights.Consistency*f.Consistency
		combined[i] = math.Max(0, 1-op.Penalty) * weighted
		sum += combined[i]
	}

	overall := 0.0
	if expectedLen > 0 {
		overall = 100 * sum / float64(expectedLen)
	}

	report := &Report{
		OverallScore:   int(math.Round(overall)),
		Level:          LevelFor(overall),
		Mode:           mode,
		ExpectedLength: expectedLen,
		DecodedLength:  decodedLen,
	}
	if mode == ModeDetailed {
		report.Units = unitScores(ops, feats, combined)
		report.Words = wordScores(ops, combined)
	}
	return report, nil
}

// unitScores renders the per-unit breakdown in alignment order.
func unitScores(ops []align.Op, feats []quality.Features, combined []float64) []UnitScore {
	units := make([]UnitScore, len(ops))
	for i, op := range ops {
		u := UnitScore{
			OpKind:           op.Kind,
			DurationScore:    feats[i].Duration,
			QualityScore:     feats[i].Quality,
			ConsistencyScore: feats[i].Consistency,
			CombinedScore:    combined[i],
			Level:            LevelFor(combined[i] * 100),
		}
		if op.Expected != nil {
			u.ExpectedSymbol = op.Expected.Symbol
			u.Word = op.Expected.Word
		}
		if op.Decoded != nil {
			sym := op.Decoded.Symbol
			u.DecodedSymbol = &sym
		}
		units[i] = u
	}
	return units
}

// wordScores rolls the per-unit combined scores up to reference words,
// preserving reference order. Insertions have no source word and are
// excluded; deleted units drag their word down with a 0 contribution.
func wordScores(ops []align.Op, combined []float64) []WordScore {
	type acc struct {
		word    string
		sum     float64
		units   int
		dropped bool
	}
	var (
		byIndex = map[int]*acc{}
		order   []int
	)
	for i, op := range ops {
		if op.Expected == nil {
			continue
		}
		wi := op.Expected.WordIndex
		w, ok := byIndex[wi]
		if !ok {
			w = &acc{word: op.Expected.Word}
			byIndex[wi] = w
			order = append(order, wi)
		}
		w.sum += combined[i]
		w.units++
		if op.Kind == align.Deletion {
			w.dropped = true
		}
	}

	words := make([]WordScore, 0, len(order))
	for _, wi := range order {
		w := byIndex[wi]
		score := 100 * w.sum / float64(w.units)
		words = append(words, WordScore{
			Word:             w.word,
			Score:            score,
			Level:            LevelFor(score),
			Units:            w.units,
			NeedsImprovement: score < needsImprovementBand || w.dropped,
		})
	}
	return words
}
