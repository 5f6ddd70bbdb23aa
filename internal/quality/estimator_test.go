package quality_test

import (
	"math"
	"testing"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/internal/decode"
	"github.com/LQ758/phonoscore/internal/phoneme"
	"github.com/LQ758/phonoscore/internal/quality"
	"github.com/LQ758/phonoscore/pkg/durations"
)

// testModel returns a duration model with a single known symbol so duration
// expectations in tests are explicit.
func testModel(t *testing.T) *durations.Model {
	t.Helper()
	m, err := durations.New(map[string]durations.Range{
		"AE": {Min: 4, Max: 8},
	}, durations.Range{Min: 2, Max: 10})
	if err != nil {
		t.Fatalf("durations.New: %v", err)
	}
	return m
}

func matchOp(symbol string, span int, confidences ...float64) align.Op {
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return align.Op{
		Kind:     align.Match,
		Expected: &phoneme.Unit{Symbol: symbol},
		Decoded: &decode.Label{
			Symbol:           symbol,
			StartFrame:       0,
			EndFrame:         span,
			Confidence:       sum / float64(len(confidences)),
			FrameConfidences: confidences,
		},
	}
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEstimate_GapsScoreZero(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	for _, op := range []align.Op{
		{Kind: align.Deletion, Expected: &phoneme.Unit{Symbol: "AE"}, Penalty: 1},
		{Kind: align.Insertion, Decoded: &decode.Label{Symbol: "AE"}, Penalty: 1},
	} {
		f := e.Estimate(op)
		if f != (quality.Features{}) {
			t.Errorf("%s features = %+v, want all zero", op.Kind, f)
		}
	}
}

func TestEstimate_DurationInsideRangeIsPerfect(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	for _, span := range []int{4, 6, 8} {
		f := e.Estimate(matchOp("AE", span, 0.9, 0.9, 0.9, 0.9))
		if f.Duration != 1.0 {
			t.Errorf("span %d duration = %v, want 1.0", span, f.Duration)
		}
	}
}

func TestEstimate_DurationDecaysOutsideRange(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	// AE expects [4, 8]. Span 2 undershoots by 2 of min 4: score 0.5.
	short := e.Estimate(matchOp("AE", 2, 0.9, 0.9))
	if !almost(short.Duration, 0.5) {
		t.Errorf("short duration = %v, want 0.5", short.Duration)
	}

	// Span 12 overshoots by 4 of max 8: score 0.5.
	long := e.Estimate(matchOp("AE", 12, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9))
	if !almost(long.Duration, 0.5) {
		t.Errorf("long duration = %v, want 0.5", long.Duration)
	}

	// Extreme overshoot bottoms out at 0 rather than going negative.
	conf := make([]float64, 40)
	for i := range conf {
		conf[i] = 0.9
	}
	extreme := e.Estimate(matchOp("AE", 40, conf...))
	if extreme.Duration != 0 {
		t.Errorf("extreme duration = %v, want 0", extreme.Duration)
	}
}

func TestEstimate_UnknownSymbolUsesFallbackRange(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	// Fallback range is [2, 10]; span 5 sits inside it.
	f := e.Estimate(matchOp("ZZ", 5, 0.9, 0.9, 0.9, 0.9, 0.9))
	if f.Duration != 1.0 {
		t.Errorf("fallback duration = %v, want 1.0", f.Duration)
	}
}

func TestEstimate_QualityIsMeanConfidence(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	f := e.Estimate(matchOp("AE", 4, 0.8, 0.8, 0.8, 0.8))
	if !almost(f.Quality, 0.8) {
		t.Errorf("quality = %v, want 0.8", f.Quality)
	}
}

func TestEstimate_BaselineRenormalizesQuality(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t), quality.WithBaselines(map[string]float64{"AE": 0.8}))

	// 0.6 confidence against a 0.8 baseline renormalizes to 0.75.
	f := e.Estimate(matchOp("AE", 4, 0.6, 0.6, 0.6, 0.6))
	if !almost(f.Quality, 0.75) {
		t.Errorf("renormalized quality = %v, want 0.75", f.Quality)
	}

	// Confidence above the baseline caps at 1.0.
	f = e.Estimate(matchOp("AE", 4, 0.9, 0.9, 0.9, 0.9))
	if f.Quality != 1.0 {
		t.Errorf("capped quality = %v, want 1.0", f.Quality)
	}
}

func TestEstimate_InvalidBaselinesAreIgnored(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t), quality.WithBaselines(map[string]float64{
		"AE": 0,   // not positive
		"T":  1.5, // above 1
	}))

	f := e.Estimate(matchOp("AE", 4, 0.6, 0.6, 0.6, 0.6))
	if !almost(f.Quality, 0.6) {
		t.Errorf("quality = %v, want unnormalized 0.6", f.Quality)
	}
}

func TestEstimate_ConsistencySteadyIsPerfect(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	f := e.Estimate(matchOp("AE", 4, 0.7, 0.7, 0.7, 0.7))
	if f.Consistency != 1.0 {
		t.Errorf("consistency = %v, want 1.0", f.Consistency)
	}
}

func TestEstimate_ConsistencyIgnoresMeanLevel(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	// Same spread around a different mean must give the same consistency.
	low := e.Estimate(matchOp("AE", 4, 0.3, 0.5, 0.3, 0.5))
	high := e.Estimate(matchOp("AE", 4, 0.7, 0.9, 0.7, 0.9))
	if !almost(low.Consistency, high.Consistency) {
		t.Errorf("consistency %v vs %v, want equal for equal spread", low.Consistency, high.Consistency)
	}
}

func TestEstimate_ConsistencyDropsWithSpread(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	steady := e.Estimate(matchOp("AE", 4, 0.8, 0.8, 0.8, 0.8))
	wobbly := e.Estimate(matchOp("AE", 4, 0.99, 0.61, 0.99, 0.61))
	if wobbly.Consistency >= steady.Consistency {
		t.Errorf("wobbly consistency %v should be below steady %v", wobbly.Consistency, steady.Consistency)
	}

	// Spread of half the confidence scale saturates to 0.
	extreme := e.Estimate(matchOp("AE", 4, 1.0, 0.0, 1.0, 0.0))
	if extreme.Consistency != 0 {
		t.Errorf("extreme consistency = %v, want 0", extreme.Consistency)
	}
}

func TestEstimate_SingleFrameIsConsistent(t *testing.T) {
	t.Parallel()
	e := quality.NewEstimator(testModel(t))

	// T is unknown to testModel; fallback min is 2, so span 1 also checks
	// that a one-frame realization still gets a consistency of 1.
	f := e.Estimate(matchOp("T", 1, 0.9))
	if f.Consistency != 1.0 {
		t.Errorf("single-frame consistency = %v, want 1.0", f.Consistency)
	}
}
