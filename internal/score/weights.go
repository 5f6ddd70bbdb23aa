package score

import (
	"errors"
	"fmt"
	"math"
)

// weightSumTolerance is how far the weight sum may drift from 1.0 before
// validation fails. Silent renormalization is never applied — it would make
// scores incomparable across deployments.
const weightSumTolerance = 1e-3

// Weights is the validated scoring-weight configuration. It is constructed
// once at startup, validated eagerly, and passed by value into the
// aggregator — never mutated per request.
type Weights struct {
	Duration    float64
	Quality     float64
	Consistency float64
}

// DefaultWeights returns the standard weight split: quality carries half the
// score, duration and consistency share the rest.
func DefaultWeights() Weights {
	return Weights{Duration: 0.3, Quality: 0.5, Consistency: 0.2}
}

// Validate reports every problem with the weight configuration: negative
// components and a sum outside 1.0 ± tolerance.
func (w Weights) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"duration":    w.Duration,
		"quality":     w.Quality,
		"consistency": w.Consistency,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("score: weight %s is negative: %.3f", name, v))
		}
	}
	if sum := w.Duration + w.Quality + w.Consistency; math.Abs(sum-1.0) > weightSumTolerance {
		errs = append(errs, fmt.Errorf("score: weights sum to %.3f, want 1.0", sum))
	}
	return errors.Join(errs...)
}
