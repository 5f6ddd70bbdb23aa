package score_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/internal/decode"
	"github.com/LQ758/phonoscore/internal/phoneme"
	"github.com/LQ758/phonoscore/internal/quality"
	"github.com/LQ758/phonoscore/internal/score"
)

func TestWeights_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		w       score.Weights
		wantErr string
	}{
		{"defaults are valid", score.DefaultWeights(), ""},
		{"equal thirds within tolerance", score.Weights{Duration: 1.0 / 3, Quality: 1.0 / 3, Consistency: 1.0 / 3}, ""},
		{"sum below one", score.Weights{Duration: 0.3, Quality: 0.5, Consistency: 0.1}, "sum to 0.900"},
		{"sum above one", score.Weights{Duration: 0.5, Quality: 0.5, Consistency: 0.2}, "sum to 1.200"},
		{"negative component", score.Weights{Duration: -0.2, Quality: 1.0, Consistency: 0.2}, "negative"},
		{"all zero", score.Weights{}, "sum to 0.000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.w.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestNewAggregator_RejectsInvalidWeights(t *testing.T) {
	t.Parallel()
	if _, err := score.NewAggregator(score.Weights{Duration: 0.9}); err == nil {
		t.Fatal("expected error for invalid weights, got nil")
	}
}

func TestLevelFor_Bands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score float64
		want  score.Level
	}{
		{100, score.LevelExcellent},
		{90, score.LevelExcellent},
		{89.9, score.LevelGood},
		{75, score.LevelGood},
		{74.9, score.LevelFair},
		{60, score.LevelFair},
		{59.9, score.LevelPoor},
		{0, score.LevelPoor},
	}
	for _, tc := range tests {
		if got := score.LevelFor(tc.score); got != tc.want {
			t.Errorf("LevelFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

// matchOps builds an all-match alignment with uniform confidence and
// identical feature triples for aggregation tests.
func matchOps(t *testing.T, symbols []string, feats quality.Features) ([]align.Op, []quality.Features) {
	t.Helper()
	ops := make([]align.Op, len(symbols))
	fs := make([]quality.Features, len(symbols))
	for i, s := range symbols {
		ops[i] = align.Op{
			Kind:     align.Match,
			Expected: &phoneme.Unit{Symbol: s, Word: "w", Index: i},
			Decoded:  &decode.Label{Symbol: s},
		}
		fs[i] = feats
	}
	return ops, fs
}

func newAggregator(t *testing.T) *score.Aggregator {
	t.Helper()
	a, err := score.NewAggregator(score.DefaultWeights())
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return a
}

func TestAggregate_PerfectMatchScoresFull(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	ops, feats := matchOps(t, []string{"K", "AE", "T"}, quality.Features{Duration: 1, Quality: 1, Consistency: 1})

	report, err := a.Aggregate(ops, feats, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 100 {
		t.Errorf("overall = %d, want 100", report.OverallScore)
	}
	if report.Level != score.LevelExcellent {
		t.Errorf("level = %q, want excellent", report.Level)
	}
	if report.ExpectedLength != 3 || report.DecodedLength != 3 {
		t.Errorf("lengths = %d/%d, want 3/3", report.ExpectedLength, report.DecodedLength)
	}
}

func TestAggregate_WeightedCombination(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	// duration 1.0, quality 0.95, consistency 1.0 against weights
	// 0.3/0.5/0.2: per-unit 0.975, overall 97.5, rounded 98.
	ops, feats := matchOps(t, []string{"K", "AE", "T", "S", "AE", "T"},
		quality.Features{Duration: 1, Quality: 0.95, Consistency: 1})

	report, err := a.Aggregate(ops, feats, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 98 {
		t.Errorf("overall = %d, want 98", report.OverallScore)
	}
}

func TestAggregate_SubstitutionAttenuatedByPenalty(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	feats := quality.Features{Duration: 1, Quality: 0.95, Consistency: 1}
	ops, fs := matchOps(t, []string{"K", "AE", "T"}, feats)
	// Turn AE into a within-class substitution.
	ops[1].Kind = align.Substitution
	ops[1].Decoded = &decode.Label{Symbol: "EH"}
	ops[1].Penalty = 0.5

	report, err := a.Aggregate(ops, fs, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (0.975 + 0.5*0.975 + 0.975) / 3 * 100 = 81.25, rounded 81.
	if report.OverallScore != 81 {
		t.Errorf("overall = %d, want 81", report.OverallScore)
	}

	// A full-cost substitution loses all credit for its unit.
	ops[1].Penalty = 1.0
	report, err = a.Aggregate(ops, fs, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (0.975 + 0 + 0.975) / 3 * 100 = 65.
	if report.OverallScore != 65 {
		t.Errorf("overall = %d, want 65", report.OverallScore)
	}
}

func TestAggregate_AllDeletionsScoreZero(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	symbols := []string{"K", "AE", "T"}
	ops := make([]align.Op, len(symbols))
	feats := make([]quality.Features, len(symbols))
	for i, s := range symbols {
		ops[i] = align.Op{Kind: align.Deletion, Expected: &phoneme.Unit{Symbol: s, Word: "cat", Index: i}, Penalty: 1}
	}

	report, err := a.Aggregate(ops, feats, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 0 {
		t.Errorf("overall = %d, want 0", report.OverallScore)
	}
	if report.Level != score.LevelPoor {
		t.Errorf("level = %q, want poor", report.Level)
	}
	if report.DecodedLength != 0 {
		t.Errorf("decoded length = %d, want 0", report.DecodedLength)
	}
}

func TestAggregate_InsertionsDoNotDiluteDenominator(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	feats := quality.Features{Duration: 1, Quality: 1, Consistency: 1}
	ops, fs := matchOps(t, []string{"K", "AE", "T"}, feats)
	ops = append(ops, align.Op{Kind: align.Insertion, Decoded: &decode.Label{Symbol: "M"}, Penalty: 1})
	fs = append(fs, quality.Features{})

	report, err := a.Aggregate(ops, fs, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 perfect matches over 3 expected units; the insertion neither adds
	// credit nor grows the denominator.
	if report.OverallScore != 100 {
		t.Errorf("overall = %d, want 100", report.OverallScore)
	}
	if report.DecodedLength != 4 {
		t.Errorf("decoded length = %d, want 4", report.DecodedLength)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	feats := quality.Features{Duration: 0.8, Quality: 0.7, Consistency: 0.9}
	ops, fs := matchOps(t, []string{"S", "AH", "N"}, feats)

	first, err := a.Aggregate(ops, fs, score.ModeDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Aggregate(ops, fs, score.ModeDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same inputs produced different reports")
	}
}

func TestAggregate_MonotonicInFeatures(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	symbols := []string{"K", "AE", "T"}

	prev := -1.0
	for _, q := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		ops, fs := matchOps(t, symbols, quality.Features{Duration: 0.9, Quality: q, Consistency: 0.9})
		report, err := a.Aggregate(ops, fs, score.ModeSimple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if float64(report.OverallScore) < prev {
			t.Fatalf("score %d decreased while quality improved to %v", report.OverallScore, q)
		}
		prev = float64(report.OverallScore)
	}
}

func TestAggregate_WeightShiftMovesScore(t *testing.T) {
	t.Parallel()
	// Quality is the weakest component here; moving weight mass from
	// quality to duration must raise the overall score, and the reverse
	// shift must lower it.
	feats := quality.Features{Duration: 0.9, Quality: 0.4, Consistency: 0.9}
	symbols := []string{"K", "AE", "T"}

	overall := func(w score.Weights) int {
		t.Helper()
		a, err := score.NewAggregator(w)
		if err != nil {
			t.Fatalf("NewAggregator(%+v): %v", w, err)
		}
		ops, fs := matchOps(t, symbols, feats)
		report, err := a.Aggregate(ops, fs, score.ModeSimple)
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		return report.OverallScore
	}

	base := overall(score.Weights{Duration: 0.3, Quality: 0.5, Consistency: 0.2})
	towardDuration := overall(score.Weights{Duration: 0.5, Quality: 0.3, Consistency: 0.2})
	towardQuality := overall(score.Weights{Duration: 0.1, Quality: 0.7, Consistency: 0.2})

	if towardDuration <= base {
		t.Errorf("shifting weight to the stronger component: %d should exceed %d", towardDuration, base)
	}
	if towardQuality >= base {
		t.Errorf("shifting weight to the weaker component: %d should fall below %d", towardQuality, base)
	}
}

func TestAggregate_MismatchedSlicesFailLoudly(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	ops, _ := matchOps(t, []string{"K"}, quality.Features{})

	_, err := a.Aggregate(ops, nil, score.ModeSimple)
	if err == nil {
		t.Fatal("expected error for mismatched slices, got nil")
	}
}

func TestAggregate_SimpleModeOmitsBreakdown(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	ops, fs := matchOps(t, []string{"K", "AE", "T"}, quality.Features{Duration: 1, Quality: 1, Consistency: 1})

	report, err := a.Aggregate(ops, fs, score.ModeSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Units != nil || report.Words != nil {
		t.Error("simple mode must not include units or words")
	}
	if report.Mode != score.ModeSimple {
		t.Errorf("mode = %q, want simple", report.Mode)
	}
}

func TestAggregate_DetailedModeUnitBreakdown(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)
	feats := quality.Features{Duration: 1, Quality: 0.9, Consistency: 1}
	ops, fs := matchOps(t, []string{"K", "AE", "T"}, feats)
	ops[2] = align.Op{Kind: align.Deletion, Expected: &phoneme.Unit{Symbol: "T", Word: "w", Index: 2}, Penalty: 1}
	fs[2] = quality.Features{}

	report, err := a.Aggregate(ops, fs, score.ModeDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Units) != 3 {
		t.Fatalf("got %d unit scores, want 3", len(report.Units))
	}

	u0 := report.Units[0]
	if u0.ExpectedSymbol != "K" || u0.OpKind != align.Match {
		t.Errorf("unit 0 = %+v, want matched K", u0)
	}
	if u0.DecodedSymbol == nil || *u0.DecodedSymbol != "K" {
		t.Errorf("unit 0 decoded symbol = %v, want K", u0.DecodedSymbol)
	}
	wantCombined := 0.3*1 + 0.5*0.9 + 0.2*1
	if math.Abs(u0.CombinedScore-wantCombined) > 1e-9 {
		t.Errorf("unit 0 combined = %v, want %v", u0.CombinedScore, wantCombined)
	}

	u2 := report.Units[2]
	if u2.OpKind != align.Deletion {
		t.Errorf("unit 2 kind = %q, want deletion", u2.OpKind)
	}
	if u2.DecodedSymbol != nil {
		t.Errorf("unit 2 decoded symbol = %v, want nil", *u2.DecodedSymbol)
	}
	if u2.CombinedScore != 0 {
		t.Errorf("unit 2 combined = %v, want 0", u2.CombinedScore)
	}
}

func TestAggregate_WordRollup(t *testing.T) {
	t.Parallel()
	a := newAggregator(t)

	// "cat sat": cat matched perfectly, sat loses its final T.
	full := quality.Features{Duration: 1, Quality: 1, Consistency: 1}
	mk := func(kind align.OpKind, sym, word string, wi, idx int) align.Op {
		op := align.Op{Kind: kind, Expected: &phoneme.Unit{Symbol: sym, Word: word, WordIndex: wi, Index: idx}}
		if kind != align.Deletion {
			op.Decoded = &decode.Label{Symbol: sym}
		} else {
			op.Penalty = 1
		}
		return op
	}
	ops := []align.Op{
		mk(align.Match, "K", "cat", 0, 0),
		mk(align.Match, "AE", "cat", 0, 1),
		mk(align.Match, "T", "cat", 0, 2),
		mk(align.Match, "S", "sat", 1, 3),
		mk(align.Match, "AE", "sat", 1, 4),
		mk(align.Deletion, "T", "sat", 1, 5),
	}
	fs := []quality.Features{full, full, full, full, full, {}}

	report, err := a.Aggregate(ops, fs, score.ModeDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Words) != 2 {
		t.Fatalf("got %d word scores, want 2", len(report.Words))
	}

	cat := report.Words[0]
	if cat.Word != "cat" || math.Abs(cat.Score-100) > 1e-9 || cat.Units != 3 {
		t.Errorf("cat rollup = %+v, want word=cat score=100 units=3", cat)
	}
	if cat.NeedsImprovement {
		t.Error("cat should not need improvement")
	}

	sat := report.Words[1]
	if sat.Word != "sat" || sat.Units != 3 {
		t.Errorf("sat rollup = %+v, want word=sat units=3", sat)
	}
	// Two of three units scored; the dropped T marks the word regardless
	// of the numeric score.
	if math.Abs(sat.Score-200.0/3.0) > 1e-9 {
		t.Errorf("sat score = %v, want %v", sat.Score, 200.0/3.0)
	}
	if !sat.NeedsImprovement {
		t.Error("sat should need improvement after dropping a phoneme")
	}
}
