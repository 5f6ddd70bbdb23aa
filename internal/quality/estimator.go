// Package quality derives per-unit acoustic features from aligned operations:
// how well the realized duration matches the phoneme's expected range, how
// confident the model was in the label, and how steady that confidence held
// across the span.
//
// Quality and consistency are deliberately disjoint statistics of the same
// frame span — the mean of the confidences versus their spread — so that a
// hesitant-but-correct articulation and a brief-but-clean one are penalized
// on different axes.
package quality

import (
	"math"

	"github.com/LQ758/phonoscore/internal/align"
	"github.com/LQ758/phonoscore/pkg/durations"
)

// Features is the per-unit score triple, each component in [0, 1].
type Features struct {
	// Duration scores how well the span length fits the expected range:
	// 1.0 inside the range, decaying symmetrically toward 0 as the
	// realization runs short or long beyond it.
	Duration float64

	// Quality is the mean model confidence over the span, renormalized
	// against the per-symbol baseline when one is configured.
	Quality float64

	// Consistency scores the steadiness of frame-to-frame confidence:
	// zero variance maps to 1.0.
	Consistency float64
}

// maxConfidenceSpread is the standard deviation at which consistency
// bottoms out at 0. Model confidences live in [0, 1], so a spread of a
// quarter of the scale already indicates a very unsteady articulation.
const maxConfidenceSpread = 0.25

// Option is a functional option for configuring an [Estimator].
type Option func(*Estimator)

// WithBaselines supplies per-symbol baseline confidences used to renormalize
// the quality signal, so phonemes the model finds inherently hard to
// recognize are not unfairly penalized. Baselines must be in (0, 1]; symbols
// without an entry are left unnormalized.
func WithBaselines(baselines map[string]float64) Option {
	return func(e *Estimator) {
		e.baselines = make(map[string]float64, len(baselines))
		for sym, b := range baselines {
			if b > 0 && b <= 1 {
				e.baselines[sym] = b
			}
		}
	}
}

// Estimator computes [Features] for aligned operations.
// It is read-only after construction and safe for concurrent use.
type Estimator struct {
	model     *durations.Model
	baselines map[string]float64
}

// NewEstimator returns an Estimator using the given duration model.
// The model is required; passing nil is a startup configuration error
// handled by the engine constructor, not here.
func NewEstimator(model *durations.Model, opts ...Option) *Estimator {
	e := &Estimator{model: model}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Estimate derives the feature triple for one alignment operation.
//
// Insertion and Deletion operations lack one side, so all three components
// are forced to 0 — the configured scoring weights always apply to a full
// triple, never to a partial one.
func (e *Estimator) Estimate(op align.Op) Features {
	if op.Kind == align.Insertion || op.Kind == align.Deletion {
		return Features{}
	}

	// Match/Substitution: both sides present. The expected symbol drives
	// the duration target; the decoded span drives the acoustic signals.
	return Features{
		Duration:    e.durationScore(op.Expected.Symbol, op.Decoded.Span()),
		Quality:     e.qualityScore(op.Decoded.Symbol, op.Decoded.Confidence),
		Consistency: consistencyScore(op.Decoded.FrameConfidences),
	}
}

// durationScore maps a realized span against the expected range. Inside the
// range is a perfect 1.0; outside, the score decays linearly with the
// relative deviation from the violated bound, symmetric for too-short and
// too-long realizations.
func (e *Estimator) durationScore(symbol string, span int) float64 {
	r := e.model.Expected(symbol)
	switch {
	case span < r.Min:
		return clamp01(1 - float64(r.Min-span)/float64(r.Min))
	case span > r.Max:
		return clamp01(1 - float64(span-r.Max)/float64(r.Max))
	default:
		return 1.0
	}
}

// qualityScore renormalizes mean confidence against the symbol's baseline
// when configured, capped at 1.0.
func (e *Estimator) qualityScore(symbol string, confidence float64) float64 {
	if base, ok := e.baselines[symbol]; ok {
		return clamp01(confidence / base)
	}
	return clamp01(confidence)
}

// consistencyScore maps the standard deviation of frame confidences onto
// [0, 1]: zero spread is perfectly steady, [maxConfidenceSpread] or more is 0.
func consistencyScore(confidences []float64) float64 {
	if len(confidences) <= 1 {
		return 1.0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	mean := sum / float64(len(confidences))

	var variance float64
	for _, c := range confidences {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(confidences))

	return clamp01(1 - math.Sqrt(variance)/maxConfidenceSpread)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
